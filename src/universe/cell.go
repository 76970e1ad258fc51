package universe

//Direction is the compass index of a neighbor inside the Neighbors vector
type Direction int

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

//offsets of every Direction as {dRow, dCol}
var directionOffsets = [8][2]int{
	North:     {-1, 0},
	NorthEast: {-1, 1},
	East:      {0, 1},
	SouthEast: {1, 1},
	South:     {1, 0},
	SouthWest: {1, -1},
	West:      {0, -1},
	NorthWest: {-1, -1},
}

//Neighbors holds the heights of the 8 compass-adjacent cells, indexed by Direction
type Neighbors [8]uint16

//Sum returns the total height of all neighbors
func (n *Neighbors) Sum() int {
	s := 0
	for _, h := range n {
		s += int(h)
	}
	return s
}

//Max returns the height of the tallest neighbor
func (n *Neighbors) Max() int {
	m := 0
	for _, h := range n {
		if int(h) > m {
			m = int(h)
		}
	}
	return m
}

//RingSums splits the vector by index parity
//even is the orthogonal ring (N, E, S, W), odd is the diagonal ring (NE, SE, SW, NW)
func (n *Neighbors) RingSums() (even int, odd int) {
	for i, h := range n {
		if i%2 == 0 {
			even += int(h)
		} else {
			odd += int(h)
		}
	}
	return
}

//Cell is one grid point
//Row and Col are fixed at creation, Height is the only state that evolves
type Cell struct {
	Row       uint16
	Col       uint16
	Height    uint16
	neighbors Neighbors
}

//Neighbors returns the neighbor vector cached during the last resolution phase
func (c Cell) Neighbors() Neighbors {
	return c.neighbors
}

//RandomSource is the only thing seeding needs from a random generator
//*math/rand.Rand satisfies it
type RandomSource interface {
	Float64() float64
}

//SeedCell creates the cell at row, col, alive with probability p
func SeedCell(row int, col int, p float64, rnd RandomSource) Cell {
	c := Cell{Row: uint16(row), Col: uint16(col)}
	if rnd.Float64() < p {
		c.Height = 1
	}
	return c
}

//ResolveNeighbors reads the 8 neighbor heights of the cell from prev
//directions falling outside the grid contribute 0, there is no wrapping
func ResolveNeighbors(c Cell, prev Area) (n Neighbors) {
	row, col := int(c.Row), int(c.Col)
	for d, off := range directionOffsets {
		r, cl := row+off[0], col+off[1]
		if r < 0 || cl < 0 || r >= prev.Side || cl >= prev.Side {
			continue
		}
		n[d] = prev.Cells[r*prev.Side+cl].Height
	}
	return
}
