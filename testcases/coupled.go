package testcases

var coupled = []TestCase{
	{
		Name:   "two_discs",
		Width:  96,
		Height: 64,
		Objects: []Object{
			{Shape: circle(28, 32, 12), Initial: polygon(28, 32, 17, 17, 24)},
			{Shape: circle(68, 32, 12), Initial: polygon(68, 32, 17, 17, 24)},
		},
		Foreground: 1,
		Background: 0,
		MinOverlap: 0.65,
	},
	{
		Name:   "disc_and_square",
		Width:  96,
		Height: 64,
		Objects: []Object{
			{Shape: circle(26, 32, 13), Initial: polygon(26, 32, 18, 18, 24)},
			{Shape: rectangle(56, 20, 80, 44), Initial: polygon(68, 32, 19, 19, 24)},
		},
		Foreground: 1,
		Background: 0,
		MinOverlap: 0.65,
	},
}
