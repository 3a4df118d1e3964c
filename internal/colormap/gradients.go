package colormap

// Gradient control points are hand-authored approximations of the
// matplotlib colormaps of the same name (no matplotlib equivalent is
// available in this module's dependency graph), reduced to the handful of
// stops needed to reproduce each colormap's characteristic shape.

func init() {
	categories = []Category{
		{
			Name: "Perceptually Uniform Sequential",
			Description: "For many applications, a perceptually uniform colormap is the best " +
				"choice - one in which equal steps in data are perceived as equal steps in the color space.",
			Colormaps: []string{"viridis", "plasma", "magma", "inferno"},
		},
		{
			Name:        "Sequential",
			Description: "Approximately monochromatic colormaps varying smoothly from low to high saturation.",
			Colormaps:   []string{"Greys", "Blues", "Greens", "Oranges", "Reds", "YlOrRd"},
		},
		{
			Name: "Diverging",
			Description: "Colormaps with a median value and two different color tones at the " +
				"high and low extremes, ideal for data centered on a meaningful midpoint.",
			Colormaps: []string{"coolwarm", "RdBu", "Spectral", "seismic"},
		},
		{
			Name:        "Qualitative",
			Description: "Colormaps that vary rapidly in color, useful for discrete categories.",
			Colormaps:   []string{"Set1", "Set2", "Paired"},
		},
		{
			Name:        "Miscellaneous",
			Description: "Colormaps that do not fit into the categories above.",
			Colormaps:   []string{"jet", "rainbow", "terrain", "ocean", "hsv", "gist_earth"},
		},
	}

	register("Perceptually Uniform Sequential", []stop{
		{0.00, 68, 1, 84},
		{0.25, 59, 82, 139},
		{0.50, 33, 145, 140},
		{0.75, 94, 201, 98},
		{1.00, 253, 231, 37},
	}, "viridis")

	register("Perceptually Uniform Sequential", []stop{
		{0.00, 13, 8, 135},
		{0.25, 126, 3, 168},
		{0.50, 204, 71, 120},
		{0.75, 248, 149, 64},
		{1.00, 240, 249, 33},
	}, "plasma")

	register("Perceptually Uniform Sequential", []stop{
		{0.00, 0, 0, 4},
		{0.25, 81, 18, 124},
		{0.50, 183, 55, 121},
		{0.75, 252, 137, 97},
		{1.00, 252, 253, 191},
	}, "magma")

	register("Perceptually Uniform Sequential", []stop{
		{0.00, 0, 0, 4},
		{0.25, 87, 16, 110},
		{0.50, 188, 55, 84},
		{0.75, 249, 142, 8},
		{1.00, 252, 255, 164},
	}, "inferno")

	register("Sequential", []stop{
		{0.0, 255, 255, 255},
		{1.0, 0, 0, 0},
	}, "Greys")

	register("Sequential", []stop{
		{0.0, 247, 251, 255},
		{0.5, 107, 174, 214},
		{1.0, 8, 48, 107},
	}, "Blues")

	register("Sequential", []stop{
		{0.0, 247, 252, 245},
		{0.5, 116, 196, 118},
		{1.0, 0, 68, 27},
	}, "Greens")

	register("Sequential", []stop{
		{0.0, 255, 245, 235},
		{0.5, 253, 141, 60},
		{1.0, 127, 39, 4},
	}, "Oranges")

	register("Sequential", []stop{
		{0.0, 255, 245, 240},
		{0.5, 251, 106, 74},
		{1.0, 103, 0, 13},
	}, "Reds")

	register("Sequential", []stop{
		{0.0, 255, 255, 178},
		{0.33, 254, 178, 76},
		{0.66, 240, 59, 32},
		{1.0, 189, 0, 38},
	}, "YlOrRd")

	register("Diverging", []stop{
		{0.0, 59, 76, 192},
		{0.5, 221, 221, 221},
		{1.0, 180, 4, 38},
	}, "coolwarm")

	register("Diverging", []stop{
		{0.0, 103, 0, 31},
		{0.5, 247, 247, 247},
		{1.0, 5, 48, 97},
	}, "RdBu")

	register("Diverging", []stop{
		{0.0, 158, 1, 66},
		{0.25, 253, 174, 97},
		{0.5, 255, 255, 191},
		{0.75, 153, 213, 148},
		{1.0, 94, 79, 162},
	}, "Spectral")

	register("Diverging", []stop{
		{0.0, 0, 0, 255},
		{0.5, 255, 255, 255},
		{1.0, 255, 0, 0},
	}, "seismic")

	register("Qualitative", []stop{
		{0.0, 228, 26, 28},
		{0.2, 55, 126, 184},
		{0.4, 77, 175, 74},
		{0.6, 152, 78, 163},
		{0.8, 255, 127, 0},
		{1.0, 255, 255, 51},
	}, "Set1")

	register("Qualitative", []stop{
		{0.0, 102, 194, 165},
		{0.33, 252, 141, 98},
		{0.66, 141, 160, 203},
		{1.0, 231, 138, 195},
	}, "Set2")

	register("Qualitative", []stop{
		{0.0, 166, 206, 227},
		{0.33, 31, 120, 180},
		{0.66, 178, 223, 138},
		{1.0, 51, 160, 44},
	}, "Paired")

	register("Miscellaneous", []stop{
		{0.00, 0, 0, 131},
		{0.25, 0, 127, 255},
		{0.50, 125, 255, 122},
		{0.75, 255, 127, 0},
		{1.00, 128, 0, 0},
	}, "jet")

	register("Miscellaneous", []stop{
		{0.00, 110, 64, 170},
		{0.33, 30, 144, 255},
		{0.66, 50, 205, 50},
		{1.00, 255, 0, 0},
	}, "rainbow")

	register("Miscellaneous", []stop{
		{0.00, 51, 51, 153},
		{0.33, 51, 204, 204},
		{0.66, 153, 204, 102},
		{1.00, 255, 255, 255},
	}, "terrain")

	register("Miscellaneous", []stop{
		{0.00, 0, 0, 102},
		{0.5, 0, 102, 153},
		{1.00, 204, 255, 255},
	}, "ocean")

	register("Miscellaneous", []stop{
		{0.00, 255, 0, 0},
		{0.17, 255, 255, 0},
		{0.33, 0, 255, 0},
		{0.50, 0, 255, 255},
		{0.67, 0, 0, 255},
		{0.83, 255, 0, 255},
		{1.00, 255, 0, 0},
	}, "hsv")

	register("Miscellaneous", []stop{
		{0.00, 0, 0, 0},
		{0.25, 25, 120, 50},
		{0.50, 180, 180, 50},
		{0.75, 150, 100, 50},
		{1.00, 255, 255, 255},
	}, "gist_earth")
}
