package engine

// Layouts taken from the puzzle description.
var (
	twoLoopsLayout = []string{
		`/->-\        `,
		`|   |  /----\`,
		`| /-+--+-\  |`,
		`| | |  | v  |`,
		`\-+-/  \-+--/`,
		`  \------/   `,
	}

	lastCartLayout = []string{
		`/>-<\  `,
		`|   |  `,
		`| /<+-\`,
		`| | | v`,
		`\>+</ |`,
		`  |   ^`,
		`  \<->/`,
	}

	verticalLineLayout = []string{
		`|`,
		`v`,
		`|`,
		`|`,
		`|`,
		`^`,
		`|`,
	}

	// Two closed loops whose carts can never meet.
	separateLoopsLayout = []string{
		`/>\/<\`,
		`\-/\-/`,
	}
)

// intersectionField returns a size x size grid made only of intersections,
// optionally with a different tile in the middle.
func intersectionField(size int, center Tile) *Grid {
	rows := make([][]Tile, size)
	for y := range rows {
		rows[y] = make([]Tile, size)
		for x := range rows[y] {
			rows[y][x] = Intersection
		}
	}
	rows[size/2][size/2] = center
	g, err := NewGrid(rows, false)
	if err != nil {
		panic(err)
	}
	return g
}
