package testcases

import "slices"

var single = []TestCase{
	{
		Name:   "disc_shrink",
		Width:  64,
		Height: 64,
		Objects: []Object{
			{Shape: circle(32, 32, 16), Initial: polygon(32, 32, 24, 24, 32)},
		},
		Foreground: 1,
		Background: 0,
		MinOverlap: 0.75,
	},
	{
		Name:   "disc_grow",
		Width:  64,
		Height: 64,
		Objects: []Object{
			{Shape: circle(32, 32, 16), Initial: polygon(32, 32, 8, 8, 12)},
		},
		Foreground: 1,
		Background: 0,
		MinOverlap: 0.75,
	},
	{
		Name:   "disc_dark",
		Width:  64,
		Height: 64,
		Objects: []Object{
			{Shape: circle(30, 34, 14), Initial: polygon(32, 32, 22, 22, 28)},
		},
		Foreground: 0.2,
		Background: 0.9,
		MinOverlap: 0.7,
	},
	{
		Name:   "ellipse",
		Width:  80,
		Height: 64,
		Objects: []Object{
			{Shape: ellipse(40, 32, 24, 14), Initial: polygon(40, 32, 32, 24, 40)},
		},
		Foreground: 1,
		Background: 0,
		MinOverlap: 0.7,
	},
	{
		Name:   "square",
		Width:  64,
		Height: 64,
		Objects: []Object{
			{Shape: rectangle(18, 18, 46, 46), Initial: polygon(32, 32, 24, 24, 32)},
		},
		Foreground: 1,
		Background: 0,
		MinOverlap: 0.7,
	},
	{
		Name:   "clockwise_start",
		Width:  64,
		Height: 64,
		Objects: []Object{
			{Shape: circle(32, 32, 16), Initial: reversed(polygon(32, 32, 24, 24, 32))},
		},
		Foreground: 1,
		Background: 0,
		MinOverlap: 0.75,
	},
}

func reversed[T any](s []T) []T {
	s = slices.Clone(s)
	slices.Reverse(s)
	return s
}
