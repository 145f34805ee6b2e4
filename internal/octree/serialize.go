package octree

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	gomath "math"
	"strconv"
	"strings"

	"github.com/Faultbox/collide/internal/collision"
	"github.com/Faultbox/collide/pkg/math"
)

// File format identifiers.
const (
	formatMagic   = "octree"
	formatVersion = 1

	// maxParseDepth bounds recursion on hostile input. Halving a float32
	// side this many times is already far below any useful node size.
	maxParseDepth = 64
)

// ErrFormat is returned when persisted octree data is malformed.
var ErrFormat = errors.New("octree: invalid format")

// Encode writes the tree in the text format:
//
//	octree 1 <minNodeSize> <maxShapesPerNode> <shapeCount>
//	<px> <py> <pz> <ex> <ey> <ez> <childMask> <contentCount> [shapeIndex ...]
//
// with one node per line in depth-first pre-order. The children of a node
// follow it in ascending octant order. Shape indices refer to the registry
// order.
func (t *Octree) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s %d %s %d %d\n", formatMagic, formatVersion,
		formatFloat(t.minNodeSize), t.maxShapesPerNode, len(t.shapes))

	var line []byte
	var encode func(n *Node)
	encode = func(n *Node) {
		line = line[:0]
		size := formatFloat(n.Size)
		line = fmt.Appendf(line, "%s %s %s %s %s %s %d %d",
			formatFloat(n.Position.X), formatFloat(n.Position.Y), formatFloat(n.Position.Z),
			size, size, size, n.ChildMask(), len(n.Content))
		for _, s := range n.Content {
			line = append(line, ' ')
			line = strconv.AppendInt(line, int64(t.index[s]), 10)
		}
		line = append(line, '\n')
		bw.Write(line)
		for _, c := range n.Children {
			if c != nil {
				encode(c)
			}
		}
	}
	encode(t.root)

	return bw.Flush()
}

// DataString returns the encoded tree.
func (t *Octree) DataString() string {
	var sb strings.Builder
	_ = t.Encode(&sb)
	return sb.String()
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// ParseString parses text produced by DataString.
func ParseString(text string, shapes []collision.Shape) (*Octree, error) {
	return Parse(strings.NewReader(text), shapes)
}

// Parse reads a tree from r. shapes must be the shape list the tree was
// built from, in insertion order. Every error wraps ErrFormat.
func Parse(r io.Reader, shapes []collision.Shape) (*Octree, error) {
	p := &parser{scanner: bufio.NewScanner(r), shapes: shapes}
	p.scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	header, err := p.next()
	if errors.Is(err, io.EOF) {
		return nil, p.errorf("empty input")
	}
	if err != nil {
		return nil, err
	}
	if len(header) != 5 || header[0] != formatMagic {
		return nil, p.errorf("bad header")
	}
	if header[1] != strconv.Itoa(formatVersion) {
		return nil, p.errorf("unsupported version %q", header[1])
	}
	minNodeSize, err := p.float(header[2])
	if err != nil {
		return nil, err
	}
	maxShapes, err := p.integer(header[3])
	if err != nil {
		return nil, err
	}
	if maxShapes < 1 {
		return nil, p.errorf("max shapes per node %d", maxShapes)
	}
	count, err := p.integer(header[4])
	if err != nil {
		return nil, err
	}
	if count != len(shapes) {
		return nil, p.errorf("file has %d shapes, got %d", count, len(shapes))
	}

	root, err := p.node(nil, 0)
	if err != nil {
		return nil, err
	}
	if _, err := p.next(); err == nil {
		return nil, p.errorf("trailing data after root")
	} else if !errors.Is(err, io.EOF) {
		return nil, err
	}

	t := newTree(root, minNodeSize, maxShapes)
	for _, s := range shapes {
		t.register(s)
	}
	return t, nil
}

type parser struct {
	scanner *bufio.Scanner
	shapes  []collision.Shape
	line    int
}

// next returns the fields of the next non-empty, non-comment line. It
// returns io.EOF (unwrapped) at the end of input.
func (p *parser) next() ([]string, error) {
	for p.scanner.Scan() {
		p.line++
		text := strings.TrimSpace(p.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		return strings.Fields(text), nil
	}
	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return nil, io.EOF
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrFormat, p.line, fmt.Sprintf(format, args...))
}

func (p *parser) float(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil || gomath.IsNaN(f) || gomath.IsInf(f, 0) {
		return 0, p.errorf("bad number %q", s)
	}
	return float32(f), nil
}

func (p *parser) integer(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, p.errorf("bad integer %q", s)
	}
	return v, nil
}

// node reads one node line and, recursively, its children.
func (p *parser) node(parent *Node, depth int) (*Node, error) {
	fields, err := p.next()
	if errors.Is(err, io.EOF) {
		return nil, p.errorf("unexpected end of data")
	}
	if err != nil {
		return nil, err
	}
	if depth > maxParseDepth {
		return nil, p.errorf("tree deeper than %d", maxParseDepth)
	}
	if len(fields) < 8 {
		return nil, p.errorf("node needs 8 fields, got %d", len(fields))
	}

	var nums [6]float32
	for i := range nums {
		if nums[i], err = p.float(fields[i]); err != nil {
			return nil, err
		}
	}
	size := nums[3]
	if nums[4] != size || nums[5] != size || size < 0 {
		return nil, p.errorf("node is not a cube")
	}
	n := &Node{Position: math.Vec3{X: nums[0], Y: nums[1], Z: nums[2]}, Size: size}
	if parent != nil && !contains(parent, n) {
		return nil, p.errorf("node lies outside its parent")
	}

	mask, err := strconv.ParseUint(fields[6], 10, 8)
	if err != nil {
		return nil, p.errorf("bad child mask %q", fields[6])
	}
	count, err := p.integer(fields[7])
	if err != nil {
		return nil, err
	}
	if count < 0 || len(fields) != 8+count {
		return nil, p.errorf("content count %d does not match %d indices", count, len(fields)-8)
	}
	if mask != 0 && count != 0 {
		return nil, p.errorf("node has both children and content")
	}

	if count > 0 {
		n.Content = make([]collision.Shape, 0, count)
	}
	for _, f := range fields[8:] {
		idx, err := p.integer(f)
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(p.shapes) {
			return nil, p.errorf("shape index %d out of range", idx)
		}
		n.Content = append(n.Content, p.shapes[idx])
	}

	for i := range n.Children {
		if mask&(1<<i) == 0 {
			continue
		}
		child, err := p.node(n, depth+1)
		if err != nil {
			return nil, err
		}
		n.Children[i] = child
	}
	return n, nil
}

// contains reports whether child fits inside parent, allowing for the
// rounding of the decimal encoding.
func contains(parent, child *Node) bool {
	eps := parent.Size * 1e-5
	pb := parent.Bounds()
	cb := child.Bounds()
	return cb.Min.X >= pb.Min.X-eps && cb.Min.Y >= pb.Min.Y-eps && cb.Min.Z >= pb.Min.Z-eps &&
		cb.Max.X <= pb.Max.X+eps && cb.Max.Y <= pb.Max.Y+eps && cb.Max.Z <= pb.Max.Z+eps &&
		child.Size < parent.Size
}
