package refdata

// Outside diameters per ASME B36.10/B36.19, with the duplicate metric
// spellings that appear in supplier sheets (e.g. 609.6 and 610.0 are both
// nominal 24"). Lookups are exact; the ingestion layer rounds to 3
// decimals so representation noise does not reach these keys.
var carbonODMap = map[float64]string{
	10.3: `1/8"`, 13.7: `1/4"`, 17.1: `3/8"`, 21.3: `1/2"`, 26.7: `3/4"`, 33.4: `1"`,
	42.2: `1-1/4"`, 48.3: `1-1/2"`, 60.3: `2"`, 73.0: `2-1/2"`, 88.9: `3"`, 101.6: `3-1/2"`,
	114.3: `4"`, 141.3: `5"`, 168.3: `6"`, 219.1: `8"`, 273.0: `10"`, 273.1: `10"`,
	323.8: `12"`, 355.6: `14"`, 406.4: `16"`, 457.0: `18"`, 457.2: `18"`, 508.0: `20"`,
	559.0: `22"`, 609.6: `24"`, 610.0: `24"`, 660.0: `26"`, 660.4: `26"`, 711.0: `28"`,
	711.2: `28"`, 762.0: `30"`, 813.0: `32"`, 812.8: `32"`, 864.0: `34"`, 863.6: `34"`,
	914.0: `36"`, 914.4: `36"`, 965.0: `38"`, 965.2: `38"`, 1016.0: `40"`, 1066.0: `42"`,
	1066.8: `42"`, 1067.0: `42"`, 1118.0: `44"`, 1117.6: `44"`, 1168.0: `46"`, 1168.4: `46"`,
	1219.0: `48"`, 1219.2: `48"`, 1321.0: `52"`, 1422.0: `56"`, 1524.0: `60"`, 1626.0: `64"`,
	1727.0: `68"`, 1829.0: `72"`, 1930.0: `76"`, 2032.0: `80"`,
}

// IS 1239 outside diameters.
var isODMap = map[float64]string{
	10.32: `1/8"`, 13.49: `1/4"`, 17.10: `3/8"`, 21.30: `1/2"`, 21.43: `1/2"`,
	26.90: `3/4"`, 27.20: `3/4"`, 33.70: `1"`, 33.80: `1"`, 42.90: `1-1/4"`,
	48.40: `1-1/2"`, 48.30: `1-1/2"`, 60.30: `2"`, 76.10: `2-1/2"`, 76.20: `2-1/2"`,
	88.90: `3"`, 114.30: `4"`, 139.70: `5"`, 165.10: `6"`,
}

// Heat exchanger / structural tube outside diameters.
var tubeODMap = map[float64]string{
	6.35: `1/4"`, 9.53: `3/8"`, 12.70: `1/2"`, 15.88: `5/8"`, 19.05: `3/4"`,
	22.23: `7/8"`, 25.40: `1"`, 31.75: `1-1/4"`, 38.10: `1-1/2"`, 50.80: `2"`,
	63.50: `2-1/2"`, 76.20: `3"`, 101.60: `4"`,
}

// Carbon and alloy schedule bands, in evaluation order. STD shares
// reference points with SCH 40 up to NPS 10" and XS with SCH 80 up to
// NPS 8"; listing STD and XS first decides which label wins there.
var carbonBands = []Band{
	{Label: "STD", Pairs: []Pair{
		{10.3, 1.73}, {13.7, 2.24}, {17.1, 2.31}, {21.3, 2.77}, {26.7, 2.87}, {33.4, 3.38},
		{42.2, 3.56}, {48.3, 3.68}, {60.3, 3.91}, {73.0, 5.16}, {88.9, 5.49}, {101.6, 5.74},
		{114.3, 6.02}, {141.3, 6.55}, {168.3, 7.11}, {219.1, 8.18}, {273.0, 9.27}, {273.1, 9.27},
		{323.8, 9.53}, {355.6, 9.53}, {406.4, 9.53}, {457.0, 9.53}, {457.2, 9.53}, {508.0, 9.53},
		{559.0, 9.53}, {558.8, 9.53}, {610.0, 9.53}, {609.6, 9.53}, {660.4, 9.53}, {711.2, 9.53},
		{711, 9.53}, {762, 9.53}, {812.8, 9.53}, {863.6, 9.53}, {914.4, 9.53}, {914, 9.53},
		{965.2, 9.53}, {1016, 9.53}, {1066.8, 9.53}, {1117.6, 9.53}, {1168.4, 9.53}, {1219.2, 9.53},
		{1219, 12.70}, {1524, 12.70},
	}},
	{Label: "XS", Pairs: []Pair{
		{10.3, 2.41}, {13.7, 3.02}, {17.1, 3.20}, {21.3, 3.73}, {26.7, 3.91}, {33.4, 4.55},
		{42.2, 4.85}, {48.3, 5.08}, {60.3, 5.54}, {73.0, 7.01}, {88.9, 7.62}, {101.6, 8.08},
		{114.3, 8.56}, {141.3, 9.53}, {168.3, 10.97}, {219.1, 12.70}, {273.0, 12.70}, {273.1, 12.70},
		{323.8, 12.70}, {355.6, 12.70}, {406.4, 12.70}, {457.0, 12.70}, {508.0, 12.70}, {559.0, 12.70},
		{610.0, 12.70}, {609.6, 12.70}, {660.4, 12.70}, {711.2, 12.70}, {762, 12.70}, {812.8, 12.70},
		{863.6, 12.70}, {914.4, 12.70}, {914, 12.70}, {965.2, 12.70}, {1016, 12.70}, {1066.8, 12.70},
		{1117.6, 12.70}, {1168.4, 12.70}, {1219.2, 12.70}, {1219, 12.70}, {1524, 12.70},
	}},
	{Label: "SCH XXS", Pairs: []Pair{
		{10.3, 4.83}, {13.7, 6.05}, {17.1, 6.40}, {21.3, 7.47}, {26.7, 7.82}, {33.4, 9.09},
		{42.2, 9.70}, {48.3, 10.15}, {60.3, 11.07}, {73.0, 14.02}, {88.9, 15.24}, {114.3, 17.12},
		{141.3, 19.05}, {168.3, 21.95}, {219.1, 22.23}, {273.0, 25.40}, {273.1, 25.40}, {323.8, 25.40},
	}},
	{Label: "SCH 10", Pairs: []Pair{
		{10.3, 1.24}, {13.7, 1.65}, {17.1, 1.65}, {21.3, 2.11}, {26.7, 2.11}, {33.4, 2.77},
		{42.2, 2.77}, {48.3, 2.77}, {60.3, 2.77}, {73.0, 3.05}, {88.9, 3.05}, {101.6, 3.05},
		{114.3, 3.05}, {141.3, 3.40}, {168.3, 3.40}, {219.1, 3.76}, {273.0, 4.19}, {273.1, 4.19},
		{323.8, 4.57}, {355.6, 6.35}, {406.4, 6.35}, {457.0, 6.35}, {508.0, 6.35}, {559.0, 6.35},
		{610.0, 6.35}, {609.6, 6.35},
	}},
	{Label: "SCH 20", Pairs: []Pair{
		{219.1, 6.35}, {273.0, 6.35}, {273.1, 6.35}, {323.8, 6.35}, {323.8, 7.1},
		{355.6, 7.92}, {406.4, 7.92}, {457.0, 7.92}, {508.0, 9.53}, {559.0, 9.53},
		{610.0, 9.53}, {609.6, 9.53},
	}},
	{Label: "SCH 30", Pairs: []Pair{
		{21.3, 2.41}, {26.7, 2.41}, {33.4, 2.90}, {42.2, 2.97}, {48.3, 3.18}, {60.3, 3.18},
		{73.0, 4.78}, {88.9, 4.78}, {101.6, 4.78}, {114.3, 4.78}, {219.1, 7.04}, {273.0, 7.80},
		{273.1, 7.80}, {323.8, 8.38}, {355.6, 9.53}, {406.4, 9.53}, {457.0, 11.13}, {508.0, 12.70},
		{559.0, 12.70}, {610.0, 14.27}, {609.6, 14.27},
	}},
	{Label: "SCH 40", Pairs: []Pair{
		{10.3, 1.73}, {13.7, 2.24}, {17.1, 2.31}, {21.3, 2.77}, {26.7, 2.87}, {33.4, 3.38},
		{42.2, 3.56}, {48.3, 3.68}, {60.3, 3.91}, {73.0, 5.16}, {88.9, 5.49}, {101.6, 5.74},
		{114.3, 6.02}, {141.3, 6.55}, {168.3, 7.11}, {219.1, 8.18}, {273.0, 9.27}, {273.1, 9.27},
		{323.8, 10.31}, {355.6, 11.13}, {355.6, 14.3}, {406.4, 12.70}, {457.0, 14.27}, {508.0, 15.09},
		{610.0, 17.48}, {609.6, 17.48},
	}},
	{Label: "SCH 60", Pairs: []Pair{
		{219.1, 10.31}, {273.0, 12.70}, {273.1, 12.70}, {323.8, 14.27}, {355.6, 15.09},
		{406.4, 16.66}, {457.0, 19.05}, {457.0, 22.23}, {508.0, 20.62}, {559.0, 22.23},
		{610.0, 24.61}, {609.6, 24.61},
	}},
	{Label: "SCH 80", Pairs: []Pair{
		{10.3, 2.41}, {13.7, 3.02}, {17.1, 3.20}, {21.3, 3.73}, {26.7, 3.91}, {33.4, 4.55},
		{42.2, 4.85}, {48.3, 5.08}, {60.3, 5.54}, {73.0, 7.01}, {88.9, 7.62}, {101.6, 8.08},
		{114.3, 8.56}, {141.3, 9.53}, {168.3, 10.97}, {219.1, 12.70}, {273.0, 15.09}, {273.1, 15.09},
		{323.8, 17.48}, {355.6, 19.05}, {406.4, 21.44}, {457.0, 23.83}, {508.0, 26.19},
		{559.0, 28.58}, {610.0, 30.96}, {609.6, 30.96},
	}},
	{Label: "SCH 100", Pairs: []Pair{
		{219.1, 15.09}, {273.0, 18.26}, {273.1, 18.26}, {323.8, 21.44}, {355.6, 23.83},
		{406.4, 26.19}, {457.0, 29.36}, {508.0, 32.54}, {559.0, 34.93}, {610.0, 38.89}, {609.6, 38.89},
	}},
	{Label: "SCH 120", Pairs: []Pair{
		{114.3, 11.13}, {141.3, 12.70}, {168.3, 14.27}, {219.1, 18.26}, {273.0, 21.44},
		{273.1, 21.44}, {323.8, 25.40}, {355.6, 27.79}, {406.4, 30.96}, {457.0, 34.93},
		{508.0, 38.10}, {559.0, 41.28}, {610.0, 46.02}, {609.6, 46.02},
	}},
	{Label: "SCH 140", Pairs: []Pair{
		{219.1, 20.62}, {273.0, 25.40}, {273.1, 25.40}, {323.8, 28.58}, {355.6, 31.75},
		{406.4, 36.53}, {457.0, 39.67}, {508.0, 44.45}, {559.0, 47.63}, {610.0, 52.37}, {609.6, 52.37},
	}},
	{Label: "SCH 160", Pairs: []Pair{
		{21.3, 4.78}, {26.7, 5.56}, {33.4, 6.35}, {42.2, 6.35}, {48.3, 7.14}, {60.3, 8.74},
		{73.0, 9.53}, {88.9, 11.13}, {114.3, 13.49}, {141.3, 15.88}, {168.3, 18.26}, {219.1, 23.01},
		{273.0, 28.58}, {273.1, 28.58}, {273.1, 32}, {323.8, 33.32}, {355.6, 35.71}, {406.4, 40.49},
		{457.0, 45.24}, {508.0, 50.01}, {559.0, 53.98}, {610.0, 59.54}, {609.6, 59.54},
	}},
}

// Stainless schedule bands per ASME B36.19, in evaluation order.
var stainlessBands = []Band{
	{Label: "Schedule 5S", Pairs: []Pair{
		{10.3, 1.24}, {13.7, 1.65}, {17.1, 1.65}, {21.3, 1.65}, {26.7, 1.65}, {33.4, 2.11},
		{42.2, 2.11}, {48.3, 2.11}, {60.3, 2.77}, {73.0, 2.77}, {88.9, 2.77}, {114.3, 2.77},
		{141.3, 3.40}, {168.3, 3.40}, {219.1, 3.76}, {273.0, 4.19}, {323.8, 4.57}, {355.6, 4.78},
		{406.4, 4.78}, {457.0, 4.78}, {508.0, 5.54}, {610.0, 6.35}, {609.6, 6.35},
	}},
	{Label: "Schedule 10S", Pairs: []Pair{
		{10.3, 1.24}, {13.7, 1.65}, {17.1, 1.65}, {21.3, 2.11}, {26.7, 2.11}, {33.4, 2.77},
		{42.2, 2.77}, {48.3, 2.77}, {60.3, 2.77}, {73.0, 3.05}, {88.9, 3.05}, {114.3, 3.05},
		{141.3, 3.40}, {168.3, 3.40}, {219.1, 3.76}, {273.0, 4.19}, {323.8, 4.57}, {355.6, 4.78},
		{406.4, 4.78}, {457.0, 4.78}, {508.0, 5.54}, {610.0, 6.35}, {609.6, 6.35},
	}},
	{Label: "Schedule 40S", Pairs: []Pair{
		{10.3, 1.73}, {13.7, 2.24}, {17.1, 2.31}, {21.3, 2.77}, {26.7, 2.87}, {33.4, 3.38},
		{42.2, 3.56}, {48.3, 3.68}, {60.3, 3.91}, {73.0, 5.16}, {88.9, 5.49}, {101.6, 5.74},
		{114.3, 6.02}, {141.3, 6.55}, {168.3, 7.11}, {219.1, 8.18}, {273.0, 9.27}, {323.8, 9.53},
		{355.6, 9.53}, {406.4, 9.53}, {457.0, 9.53}, {508.0, 9.53}, {610.0, 9.53}, {609.6, 9.53},
	}},
	{Label: "Schedule 80S", Pairs: []Pair{
		{10.3, 2.41}, {13.7, 3.02}, {17.1, 3.20}, {21.3, 3.73}, {26.7, 3.91}, {33.4, 4.55},
		{42.2, 4.85}, {48.3, 5.08}, {60.3, 5.54}, {73.0, 7.01}, {88.9, 7.62}, {101.6, 8.08},
		{114.3, 8.56}, {141.3, 9.53}, {168.3, 10.97}, {219.1, 12.70}, {273.0, 15.09}, {273.1, 15.09},
		{323.8, 17.48}, {355.6, 19.05}, {406.4, 21.44}, {406.4, 25.4}, {457.0, 23.83}, {508.0, 26.19},
		{559.0, 28.58}, {610.0, 30.96}, {609.6, 30.96},
	}},
	{Label: "Schedule 160S", Pairs: []Pair{
		{21.3, 4.78}, {26.7, 5.56}, {33.4, 6.35}, {42.2, 6.35}, {48.3, 7.14}, {60.3, 8.74},
		{73.0, 9.53}, {88.9, 11.13}, {114.3, 13.49}, {141.3, 15.88}, {168.3, 18.26}, {219.1, 23.01},
		{273.0, 28.58}, {323.8, 33.32}, {355.6, 35.71}, {406.4, 40.49}, {457.0, 45.24}, {508.0, 50.01},
		{559.0, 53.98}, {610.0, 59.54}, {609.6, 59.54},
	}},
	{Label: "SCH XXS", Pairs: []Pair{
		{10.3, 4.83}, {13.7, 6.05}, {17.1, 6.40}, {21.3, 7.47}, {26.7, 7.82}, {33.4, 9.09},
		{42.2, 9.70}, {48.3, 10.15}, {60.3, 11.07}, {73.0, 14.02}, {88.9, 15.24}, {114.3, 17.12},
		{141.3, 19.05}, {168.3, 21.95}, {219.1, 22.23}, {273.0, 25.40}, {323.8, 25.40},
	}},
}

// IS 1239 weight classes. Some diameters deliberately repeat across
// classes with differing walls (e.g. OD 21.3 carries WT 3.2 in the Heavy
// class only); the entries are enumerated exactly, never interpolated.
var isBands = []Band{
	{Label: "IS 1239: Light (A-Class)", Pairs: []Pair{
		{10.32, 1.80}, {13.49, 1.80}, {17.10, 1.80}, {21.3, 2.00}, {21.43, 2.00}, {27.20, 2.35},
		{33.70, 2.65}, {33.80, 2.65}, {42.90, 2.65}, {48.40, 2.90}, {48.30, 2.90}, {60.30, 2.90},
		{76.20, 3.25}, {88.90, 3.25}, {114.30, 3.65},
	}},
	{Label: "IS 1239: Medium (B-Class)", Pairs: []Pair{
		{10.32, 2.00}, {13.49, 2.35}, {17.10, 2.35}, {21.3, 2.65}, {21.43, 2.65}, {27.20, 2.65},
		{33.80, 3.25}, {33.70, 3.25}, {42.90, 3.25}, {48.40, 3.25}, {48.30, 3.25}, {60.30, 3.65},
		{76.20, 3.65}, {76.10, 3.60}, {88.90, 4.05}, {114.30, 4.50}, {139.70, 4.85}, {165.10, 4.85},
	}},
	{Label: "IS 1239: Heavy (C-Class)", Pairs: []Pair{
		{10.32, 2.65}, {13.49, 2.90}, {17.10, 2.90}, {21.43, 3.25}, {27.20, 3.25}, {33.80, 4.05},
		{33.70, 4}, {21.3, 3.2}, {42.90, 4.05}, {48.40, 4.05}, {48.30, 4.05}, {60.30, 4.47},
		{76.20, 4.47}, {76.10, 4.50}, {88.90, 4.85}, {114.30, 5.40}, {139.70, 5.40}, {165.10, 5.40},
	}},
}

// Tube wall classes, matched by exact pair membership. The trailing band
// lists extra-heavy walls that are known but still sold as non-standard.
var tubeBands = []Band{
	{Label: "Small Wall Tube", Pairs: []Pair{
		{6.35, 0.71}, {6.35, 0.89}, {9.53, 0.89}, {9.53, 1.24}, {12.70, 0.89}, {12.70, 1.24},
		{15.88, 0.89}, {15.88, 1.24}, {15.88, 1.65}, {19.05, 0.89}, {19.05, 1.24}, {19.05, 1.65},
		{22.23, 1.24}, {22.23, 1.65}, {25.40, 1.24}, {25.40, 1.65}, {31.75, 1.24}, {31.75, 1.65},
		{31.75, 2.11}, {38.10, 1.65}, {38.10, 2.11}, {50.80, 1.65}, {50.80, 2.11}, {50.80, 2.77},
		{63.50, 1.65}, {63.50, 2.11}, {63.50, 2.77}, {76.20, 1.65}, {76.20, 2.11}, {76.20, 2.77},
		{101.60, 2.11}, {101.60, 2.77},
	}},
	{Label: "Medium Wall Tube", Pairs: []Pair{
		{6.35, 1.24}, {9.53, 1.65}, {12.70, 1.65}, {15.88, 2.11}, {19.05, 2.11}, {22.23, 2.11},
		{25.40, 2.11}, {31.75, 2.77}, {38.10, 2.77}, {50.80, 3.05}, {63.50, 3.05}, {76.20, 3.05},
		{101.60, 3.05},
	}},
	{Label: "Heavy Wall Tube", Pairs: []Pair{
		{6.35, 1.65}, {9.53, 2.11}, {12.70, 2.11}, {15.88, 2.77}, {19.05, 2.77}, {22.23, 2.77},
		{25.40, 2.77}, {31.75, 3.05}, {38.10, 3.05}, {50.80, 3.40}, {63.50, 3.40}, {76.20, 3.40},
		{101.60, 3.40},
	}},
	{Label: "Non-Standard Tube", Pairs: []Pair{
		{15.88, 3.05}, {19.05, 3.05}, {22.23, 3.05}, {25.40, 3.05}, {31.75, 3.40}, {38.10, 3.40},
		{50.80, 3.73}, {63.50, 3.73}, {76.20, 3.73}, {101.60, 4.78},
	}},
}

// Display order for the heatmap OD axis: nominal pipe size ascending,
// then the sentinel buckets.
var odOrder = []string{
	`1/8"`, `1/4"`, `3/8"`, `1/2"`, `3/4"`, `1"`, `1-1/4"`, `1-1/2"`,
	`2"`, `2-1/2"`, `3"`, `3-1/2"`, `4"`, `5"`, `6"`, `8"`, `10"`, `12"`,
	`14"`, `16"`, `18"`, `20"`, `22"`, `24"`, `26"`, `28"`, `30"`, `32"`,
	`34"`, `36"`, `38"`, `40"`, `42"`, `44"`, `46"`, `48"`, `52"`, `56"`,
	`60"`, `64"`, `68"`, `72"`, `76"`, `80"`, "Non Standard OD", "Non STD", "Unknown OD",
}

// Per-family schedule column orders for the heatmap WT axis. These are
// display orders (thin to thick walls), distinct from the band
// evaluation orders above.
var (
	carbonWTOrder = []string{
		"SCH 10", "SCH 20", "SCH 30", "STD", "SCH 40", "SCH 60", "XS", "SCH 80",
		"SCH 100", "SCH 120", "SCH 140", "SCH 160", "SCH XXS", "Non STD",
	}
	ssWTOrder = []string{
		"Schedule 5S", "Schedule 10S", "Schedule 40S", "Schedule 80S", "Schedule 160S", "SCH XXS", "Non STD",
	}
	isWTOrder = []string{
		"IS 1239: Light (A-Class)", "IS 1239: Medium (B-Class)", "IS 1239: Heavy (C-Class)",
		"Non IS Standard",
	}
	tubeWTOrder = []string{
		"Small Wall Tube", "Medium Wall Tube", "Heavy Wall Tube", "Non-Standard Tube",
	}
)
