package datagen

import (
	"encoding/base64"
	"math"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/getmockd/specmock/pkg/jsonvalue"
	"github.com/getmockd/specmock/pkg/schema"
)

// Faker is the randomized-data capability the random provider draws from.
// *gofakeit.Faker satisfies it.
type Faker interface {
	IntRange(min, max int) int
	Float64Range(min, max float64) float64
	Bool() bool
	Email() string
	UUID() string
	DateRange(start, end time.Time) time.Time
	Password(lower, upper, numeric, special, space bool, num int) string
	URL() string
	DomainName() string
	IPv4Address() string
	IPv6Address() string
	LoremIpsumSentence(wordCount int) string
	LetterN(n uint) string
}

// NewFaker returns a locked gofakeit source. A zero seed draws a random seed.
func NewFaker(seed uint64) Faker {
	return gofakeit.New(seed)
}

// maxSafeInteger bounds int64 output to integers exactly representable as
// float64.
const maxSafeInteger = 1<<53 - 1

// maxTextLength caps the length of synthesized strings.
const maxTextLength = 1 << 20

// RandomOptions bound the values the random provider produces when the schema
// itself carries no constraints.
type RandomOptions struct {
	DateStart time.Time
	DateEnd   time.Time
	NumberMin float64
	NumberMax float64
}

// DefaultRandomOptions returns the built-in ranges.
func DefaultRandomOptions() RandomOptions {
	return RandomOptions{
		DateStart: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		DateEnd:   time.Date(2030, 12, 31, 23, 59, 59, 0, time.UTC),
		NumberMin: 0,
		NumberMax: 1000000,
	}
}

// Random synthesizes a fresh value for every call.
type Random struct {
	faker Faker
	opts  RandomOptions
}

// NewRandom creates a randomized provider. A nil faker uses a randomly
// seeded gofakeit source.
func NewRandom(faker Faker, opts RandomOptions) *Random {
	if faker == nil {
		faker = NewFaker(0)
	}
	if opts.NumberMin > opts.NumberMax {
		opts.NumberMin, opts.NumberMax = opts.NumberMax, opts.NumberMin
	}
	if opts.DateEnd.Before(opts.DateStart) {
		opts.DateStart, opts.DateEnd = opts.DateEnd, opts.DateStart
	}
	return &Random{faker: faker, opts: opts}
}

// ForFormat implements Provider.
func (r *Random) ForFormat(format string, node *schema.Node) jsonvalue.Value {
	canonical, _ := Canonical(format)
	switch canonical {
	case FormatInt32:
		return jsonvalue.Int(r.integer(node, math.MinInt32, math.MaxInt32))
	case FormatInt64:
		return jsonvalue.Int(r.integer(node, -maxSafeInteger, maxSafeInteger))
	case FormatFloat, FormatDouble:
		return jsonvalue.Double(r.number(node))
	case FormatBoolean:
		return jsonvalue.Bool(r.faker.Bool())
	case FormatByte:
		return jsonvalue.String(base64.StdEncoding.EncodeToString([]byte(r.faker.LetterN(12))))
	case FormatBinary:
		return jsonvalue.String(r.faker.LetterN(16))
	case FormatDate:
		return jsonvalue.String(r.date().Format(time.DateOnly))
	case FormatDateTime:
		return jsonvalue.String(r.date().Format(time.RFC3339))
	case FormatPassword:
		return jsonvalue.String(r.faker.Password(true, true, true, true, false, 12))
	case FormatEmail:
		return jsonvalue.String(r.faker.Email())
	case FormatUUID:
		return jsonvalue.String(r.faker.UUID())
	case FormatURI:
		return jsonvalue.String(r.faker.URL())
	case FormatHostname:
		return jsonvalue.String(r.faker.DomainName())
	case FormatIPv4:
		return jsonvalue.String(r.faker.IPv4Address())
	case FormatIPv6:
		return jsonvalue.String(r.faker.IPv6Address())
	}
	return r.ForKind(kindOf(node), node)
}

// ForKind implements Provider.
func (r *Random) ForKind(kind schema.Kind, node *schema.Node) jsonvalue.Value {
	switch kind {
	case schema.KindInteger:
		return jsonvalue.Int(r.integer(node, -maxSafeInteger, maxSafeInteger))
	case schema.KindNumber:
		return jsonvalue.Double(r.number(node))
	case schema.KindBoolean:
		return jsonvalue.Bool(r.faker.Bool())
	default:
		return jsonvalue.String(r.text(node))
	}
}

// integer draws from [min, max] with exclusive bounds moved inward by one.
// Missing bounds come from the configured number range, clamped to the
// format's own range. A lone bound outside that range shifts the range so it
// ends at the bound.
func (r *Random) integer(node *schema.Node, floor, ceil int64) int64 {
	lo := clampInt(int64(math.Ceil(r.opts.NumberMin)), floor, ceil)
	hi := clampInt(int64(math.Floor(r.opts.NumberMax)), floor, ceil)
	span := hi - lo
	var hasMin, hasMax bool
	if node != nil {
		if node.Minimum != nil {
			hasMin = true
			lo = clampFloat(math.Ceil(*node.Minimum), floor, ceil)
			if node.ExclusiveMinimum && float64(lo) == *node.Minimum && lo < ceil {
				lo++
			}
		}
		if node.Maximum != nil {
			hasMax = true
			hi = clampFloat(math.Floor(*node.Maximum), floor, ceil)
			if node.ExclusiveMaximum && float64(hi) == *node.Maximum && hi > floor {
				hi--
			}
		}
	}
	if lo > hi {
		switch {
		case hasMax && !hasMin:
			lo = max(floor, hi-span)
		case hasMin && !hasMax:
			hi = min(ceil, lo+span)
		default:
			lo, hi = hi, lo
		}
	}
	if lo == hi {
		return lo
	}
	return int64(r.faker.IntRange(int(lo), int(hi)))
}

// number draws from the inclusive [minimum, maximum] range, shifting the
// configured range the same way integer does for a lone bound.
func (r *Random) number(node *schema.Node) float64 {
	lo, hi := r.opts.NumberMin, r.opts.NumberMax
	span := hi - lo
	var hasMin, hasMax bool
	if node != nil {
		if node.Minimum != nil {
			hasMin = true
			lo = *node.Minimum
		}
		if node.Maximum != nil {
			hasMax = true
			hi = *node.Maximum
		}
	}
	if lo > hi {
		switch {
		case hasMax && !hasMin:
			lo = hi - span
		case hasMin && !hasMax:
			hi = lo + span
		default:
			lo, hi = hi, lo
		}
	}
	if lo == hi {
		return lo
	}
	return r.faker.Float64Range(lo, hi)
}

func (r *Random) date() time.Time {
	return r.faker.DateRange(r.opts.DateStart, r.opts.DateEnd).UTC().Truncate(time.Second)
}

// text returns lorem ipsum fitted to the node's length constraints. A
// minLength above maxTextLength is capped.
func (r *Random) text(node *schema.Node) string {
	s := r.faker.LoremIpsumSentence(r.faker.IntRange(3, 8))
	if node == nil {
		return s
	}
	minLen := 0
	if node.MinLength != nil {
		minLen = min(max(*node.MinLength, 0), maxTextLength)
	}
	if len(s) < minLen {
		s = strings.Repeat(s+" ", minLen/(len(s)+1)+1)[:minLen]
	}
	if node.MaxLength != nil && len(s) > *node.MaxLength {
		s = s[:max(*node.MaxLength, 0)]
	}
	s = strings.TrimRight(s, " ")
	if len(s) < minLen {
		s += strings.Repeat("x", minLen-len(s))
	}
	return s
}

func clampInt(v, lo, hi int64) int64 {
	return max(lo, min(v, hi))
}

func clampFloat(v float64, lo, hi int64) int64 {
	if v <= float64(lo) {
		return lo
	}
	if v >= float64(hi) {
		return hi
	}
	return int64(v)
}
