package universe

//DefaultTemplates are the seed patterns every universe knows, coordinates are [x,y]
var DefaultTemplates = []Template{
	{
		"blinker",
		"a horizontal triple oscillating between the single-cell states",
		[][]int{{1, 1}, {2, 1}, {3, 1}},
	},
	{
		"ring",
		"a saturated orthogonal ring raising its center into a colony seed",
		[][]int{{2, 1}, {1, 2}, {3, 2}, {2, 3}},
	},
	{
		"colony",
		"two rings side by side growing into a colony",
		[][]int{
			{2, 1}, {1, 2}, {3, 2}, {2, 3},
			{5, 1}, {4, 2}, {6, 2}, {5, 3},
		},
	},
}
