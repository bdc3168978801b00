package convert

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/c360studio/semrepo/identifier"
	"github.com/c360studio/semrepo/rdf"
	"github.com/c360studio/semrepo/repository"
)

// decimalLexical is the xsd:decimal lexical space: no exponent, no
// special values.
var decimalLexical = regexp.MustCompile(`^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)$`)

// ValueConverter maps stored values to object terms. Reference and path
// values are resolved to the target node's subject, which reads from the
// session.
type ValueConverter struct {
	session  repository.Session
	subjects identifier.SubjectResolver
}

// NewValueConverter creates a value converter scoped to a session.
func NewValueConverter(session repository.Session, subjects identifier.SubjectResolver) *ValueConverter {
	return &ValueConverter{session: session, subjects: subjects}
}

// Forward returns the object term for v.
func (c *ValueConverter) Forward(ctx context.Context, v repository.Value) (rdf.Term, error) {
	switch v.Type {
	case repository.TypeString, "":
		if v.Lang != "" {
			return rdf.NewLangLiteral(v.Lexical, v.Lang), nil
		}
		return rdf.NewLiteral(v.Lexical), nil

	case repository.TypeName:
		return rdf.NewLiteral(v.Lexical), nil

	case repository.TypeLong:
		n, err := v.Int64()
		if err != nil {
			return rdf.Term{}, err
		}
		return rdf.NewTypedLiteral(strconv.FormatInt(n, 10), rdf.XSDLong), nil

	case repository.TypeDouble:
		f, err := v.Float64()
		if err != nil {
			return rdf.Term{}, err
		}
		return rdf.NewTypedLiteral(formatDouble(f), rdf.XSDDouble), nil

	case repository.TypeDecimal:
		if !decimalLexical.MatchString(v.Lexical) {
			return rdf.Term{}, fmt.Errorf("%w: %q as decimal", repository.ErrValueFormat, v.Lexical)
		}
		return rdf.NewTypedLiteral(v.Lexical, rdf.XSDDecimal), nil

	case repository.TypeBoolean:
		b, err := v.Bool()
		if err != nil {
			return rdf.Term{}, err
		}
		return rdf.NewTypedLiteral(strconv.FormatBool(b), rdf.XSDBoolean), nil

	case repository.TypeDate:
		t, err := v.Time()
		if err != nil {
			return rdf.Term{}, err
		}
		return rdf.NewTypedLiteral(t.UTC().Format(time.RFC3339Nano), rdf.XSDDateTime), nil

	case repository.TypeURI:
		u, err := url.Parse(v.Lexical)
		if err != nil || !u.IsAbs() {
			return rdf.Term{}, fmt.Errorf("%w: %q is not an absolute uri", repository.ErrValueFormat, v.Lexical)
		}
		return rdf.NewIRI(v.Lexical), nil

	case repository.TypeBinary:
		if _, err := v.Binary(); err != nil {
			return rdf.Term{}, err
		}
		return rdf.NewTypedLiteral(v.Lexical, rdf.XSDBase64Binary), nil

	case repository.TypeReference, repository.TypeWeakReference:
		id, err := v.Reference()
		if err != nil {
			return rdf.Term{}, err
		}
		node, err := c.session.NodeByID(ctx, id)
		if err != nil {
			return rdf.Term{}, fmt.Errorf("dereference %s: %w", id, err)
		}
		return c.subjects.Reverse(ctx, node)

	case repository.TypePath:
		node, err := c.session.Node(ctx, v.Lexical)
		if err != nil {
			return rdf.Term{}, fmt.Errorf("resolve path %s: %w", v.Lexical, err)
		}
		return c.subjects.Reverse(ctx, node)

	default:
		return rdf.Term{}, fmt.Errorf("%w: unsupported value type %q", repository.ErrValueFormat, v.Type)
	}
}

// formatDouble renders f in the xsd:double lexical space.
func formatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
