package rfc822

import "fmt"

// SectionID is an ordered sequence of 1-based child indices locating a
// part inside a MIME tree, the addressing scheme used by IMAP partial
// fetch (BODY[1.2] and friends). It is derived on demand from the
// ancestor chain, never stored on the part.
type SectionID []int

func (s SectionID) String() string {
	out := ""
	for i, n := range s {
		if i > 0 {
			out += "."
		}
		out += fmt.Sprintf("%d", n)
	}
	return out
}

// SectionID derives the address of p within its tree. The root part
// has an empty SectionID.
func (p *Part) SectionID() SectionID {
	var path SectionID
	for node := p; node.parent != nil; node = node.parent {
		path = append(SectionID{node.index + 1}, path...)
	}
	return path
}

// ResolveSection walks the tree from p along the given path.
// Multipart nodes are indexed into their children; Message and Single
// nodes accept only index 1, addressing the embedded message or the
// part itself.
func (p *Part) ResolveSection(path SectionID) (*Part, error) {
	node := p
	for depth, idx := range path {
		if idx < 1 {
			return nil, fmt.Errorf("section %v: index %d at depth %d is not 1-based", path, idx, depth)
		}
		switch node.Kind {
		case PartMultipart:
			if idx > len(node.Children) {
				return nil, fmt.Errorf("section %v: part has only %d children", path, len(node.Children))
			}
			node = node.Children[idx-1]
		case PartMessage:
			if idx != 1 {
				return nil, fmt.Errorf("section %v: message part accepts only index 1", path)
			}
			node = node.Embedded
		default:
			if idx != 1 {
				return nil, fmt.Errorf("section %v: leaf part accepts only index 1", path)
			}
		}
		if node == nil {
			return nil, fmt.Errorf("section %v: no part at depth %d", path, depth)
		}
	}
	return node, nil
}
