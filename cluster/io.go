package cluster

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/hupe1980/metrigo/internal/binio"
)

// Save writes the subtree to path. The byte layout is an internal detail;
// the contract is that Load reproduces a structurally identical tree.
func (b *Ball[D]) Save(path string) error {
	return binio.WriteFile(path, binio.KindBall, b.appendTo(nil))
}

// Load reads a tree written by Save.
func Load[D Number](path string) (*Ball[D], error) {
	payload, err := binio.ReadFile(path, binio.KindBall)
	if err != nil {
		return nil, err
	}
	b, rest, err := readBall[D](payload, 0)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("trailing bytes after tree payload")
	}
	return b, nil
}

func (b *Ball[D]) appendTo(buf []byte) []byte {
	var flags byte
	if b.IsLeaf() {
		flags |= 1
	}
	buf = append(buf, flags)
	buf = binio.AppendUvarint(buf, uint64(b.center))
	buf = binio.AppendUvarint(buf, uint64(b.radialIndex))
	buf = binio.AppendNumber(buf, b.radius)
	if b.IsLeaf() {
		buf = binio.AppendUvarint(buf, uint64(len(b.indices)))
		for _, i := range b.indices {
			buf = binio.AppendUvarint(buf, uint64(i))
		}
		return buf
	}
	for _, c := range b.children {
		buf = c.appendTo(buf)
	}
	return buf
}

func readBall[D Number](buf []byte, depth int) (*Ball[D], []byte, error) {
	if len(buf) == 0 {
		return nil, nil, fmt.Errorf("truncated tree payload")
	}
	flags := buf[0]
	buf = buf[1:]

	b := &Ball[D]{depth: depth}
	var v uint64
	var err error
	if v, buf, err = binio.ReadUvarint(buf); err != nil {
		return nil, nil, err
	}
	b.center = int(v)
	if v, buf, err = binio.ReadUvarint(buf); err != nil {
		return nil, nil, err
	}
	b.radialIndex = int(v)
	if b.radius, buf, err = binio.ReadNumber[D](buf); err != nil {
		return nil, nil, err
	}

	if flags&1 != 0 {
		var count uint64
		if count, buf, err = binio.ReadUvarint(buf); err != nil {
			return nil, nil, err
		}
		b.indices = make([]int, count)
		for i := range b.indices {
			if v, buf, err = binio.ReadUvarint(buf); err != nil {
				return nil, nil, err
			}
			b.indices[i] = int(v)
		}
		b.cardinality = len(b.indices)
		return b, buf, nil
	}

	left, buf, err := readBall[D](buf, depth+1)
	if err != nil {
		return nil, nil, err
	}
	right, buf, err := readBall[D](buf, depth+1)
	if err != nil {
		return nil, nil, err
	}
	b.children = []*Ball[D]{left, right}
	b.cardinality = left.cardinality + right.cardinality
	return b, buf, nil
}

// SaveCSV writes one row per cluster of the subtree, in preorder, with
// columns depth, cardinality, center, radius and leaf flag.
func (b *Ball[D]) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"depth", "cardinality", "center", "radius", "leaf"}); err != nil {
		return err
	}
	for _, c := range b.Subtree() {
		row := []string{
			strconv.Itoa(c.depth),
			strconv.Itoa(c.cardinality),
			strconv.Itoa(c.center),
			fmt.Sprintf("%v", c.radius),
			strconv.FormatBool(c.IsLeaf()),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
