package obf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mixin-ap/internal/symbol"
)

// ErrMalformedSRG is returned for SRG lines that cannot be parsed.
var ErrMalformedSRG = errors.New("malformed SRG")

// Provider answers "what is this development name called in the scheme".
type Provider struct {
	classes       map[string]string
	fields        map[string]symbol.MemberRef
	methods       map[symbol.MemberRef]symbol.MemberRef
	methodsByName map[string][]symbol.MemberRef
}

// NewProvider creates an empty provider.
func NewProvider() *Provider {
	return &Provider{
		classes:       make(map[string]string),
		fields:        make(map[string]symbol.MemberRef),
		methods:       make(map[symbol.MemberRef]symbol.MemberRef),
		methodsByName: make(map[string][]symbol.MemberRef),
	}
}

// LoadSRG reads an SRG file from path.
func LoadSRG(path string) (*Provider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping file %s: %w", path, err)
	}
	defer f.Close()

	p, err := ParseSRG(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %s: %w", path, err)
	}

	return p, nil
}

// ParseSRG reads SRG lines:
//
//	PK: <from> <to>
//	CL: <from> <to>
//	FD: <owner/from> <owner/to>
//	MD: <owner/from> <desc> <owner/to> <desc>
//
// The left-hand side is the development name. Blank lines and "#" comments
// are skipped; PK lines are accepted and ignored.
func ParseSRG(r io.Reader) (*Provider, error) {
	p := NewProvider()

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "PK:":
			continue
		case "CL:":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: line %d: expected 2 names", ErrMalformedSRG, lineNo)
			}

			p.AddClass(fields[1], fields[2])
		case "FD:":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: line %d: expected 2 names", ErrMalformedSRG, lineNo)
			}

			p.AddField(symbol.ParseMemberRef(fields[1], ""), symbol.ParseMemberRef(fields[2], ""))
		case "MD:":
			if len(fields) != 5 {
				return nil, fmt.Errorf("%w: line %d: expected 2 names with descriptors", ErrMalformedSRG, lineNo)
			}

			p.AddMethod(symbol.ParseMemberRef(fields[1], fields[2]), symbol.ParseMemberRef(fields[3], fields[4]))
		default:
			return nil, fmt.Errorf("%w: line %d: unknown record %q", ErrMalformedSRG, lineNo, fields[0])
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return p, nil
}

// AddClass records a class mapping.
func (p *Provider) AddClass(from, to string) {
	p.classes[from] = to
}

// AddField records a field mapping. Field descriptors are ignored.
func (p *Provider) AddField(from, to symbol.MemberRef) {
	p.fields[from.Name()] = to
}

// AddMethod records a method mapping.
func (p *Provider) AddMethod(from, to symbol.MemberRef) {
	if _, ok := p.methods[from]; !ok {
		p.methodsByName[from.Name()] = append(p.methodsByName[from.Name()], from)
	}

	p.methods[from] = to
}

// Class returns the mapped internal name of a class.
func (p *Provider) Class(name string) (string, bool) {
	to, ok := p.classes[name]
	return to, ok
}

// Field returns the mapped field.
func (p *Provider) Field(ref symbol.MemberRef) (symbol.MemberRef, bool) {
	to, ok := p.fields[ref.Name()]
	return to, ok
}

// Method returns the mapped method. A ref without descriptor matches the
// first mapping recorded for that name.
func (p *Provider) Method(ref symbol.MemberRef) (symbol.MemberRef, bool) {
	if ref.Desc() != "" {
		to, ok := p.methods[ref]
		return to, ok
	}

	candidates := p.methodsByName[ref.Name()]
	if len(candidates) == 0 {
		return symbol.MemberRef{}, false
	}

	return p.methods[candidates[0]], true
}

// Len returns the number of class, field and method mappings.
func (p *Provider) Len() int {
	return len(p.classes) + len(p.fields) + len(p.methods)
}
