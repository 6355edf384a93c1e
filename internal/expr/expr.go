package expr

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	gocache "github.com/patrickmn/go-cache"

	"github.com/san-kum/iterlab/internal/dynamo"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// DefaultVars are the argument names a run function is compiled with.
// Root-finders pass only x; ODE steppers pass x and y.
var DefaultVars = []string{"x", "y"}

var (
	ErrSyntax     = errors.New("expr: invalid expression")
	ErrIdentifier = errors.New("expr: invalid identifier")
)

var identRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

var outPath = cue.ParsePath("out")

// program is one compiled expression. cue values are not safe for
// concurrent evaluation, so calls are serialized.
type program struct {
	mu    sync.Mutex
	value cue.Value
	vars  []cue.Path
}

func (p *program) eval(args ...float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := p.value
	for i, path := range p.vars {
		if i >= len(args) {
			break
		}
		v = v.FillPath(path, args[i])
	}
	f, err := v.LookupPath(outPath).Float64()
	if err != nil {
		return math.NaN()
	}
	return f
}

// Compiler turns expression sources into dynamo.Func values. Expressions
// are CUE: the math package is imported when referenced, arguments are
// bound to vars and consts are declared as fields.
type Compiler struct {
	mu    sync.Mutex
	ctx   *cue.Context
	cache *gocache.Cache
}

func NewCompiler() *Compiler {
	return &Compiler{
		ctx:   cuecontext.New(),
		cache: gocache.New(DefaultExpiration, DefaultCleanupInterval),
	}
}

// Compile validates src and returns a function of len(vars) arguments.
// Evaluation failures such as division by zero return NaN.
func (c *Compiler) Compile(src string, vars []string, consts map[string]float64) (dynamo.Func, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	if len(vars) == 0 {
		vars = DefaultVars
	}

	key, err := cacheKey(src, vars, consts)
	if err != nil {
		return nil, err
	}
	if cached, found := c.cache.Get(key); found {
		if p, ok := cached.(*program); ok {
			return p.eval, nil
		}
	}

	source := Program(src, vars, consts)

	c.mu.Lock()
	value := c.ctx.CompileString(source, cue.Filename("fn.cue"))
	c.mu.Unlock()

	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSyntax, src, err)
	}
	if !value.LookupPath(outPath).Exists() {
		return nil, fmt.Errorf("%w: %q has no value", ErrSyntax, src)
	}

	p := &program{value: value, vars: make([]cue.Path, len(vars))}
	for i, name := range vars {
		p.vars[i] = cue.ParsePath(name)
	}
	c.cache.Set(key, p, gocache.DefaultExpiration)
	return p.eval, nil
}

func (c *Compiler) Cached() int { return c.cache.ItemCount() }

// Program renders the CUE source an expression is compiled from.
func Program(src string, vars []string, consts map[string]float64) string {
	var b strings.Builder
	if strings.Contains(src, "math.") {
		b.WriteString("import \"math\"\n\n")
	}
	for _, name := range sortedKeys(consts) {
		fmt.Fprintf(&b, "%s: %s\n", name, strconv.FormatFloat(consts[name], 'g', -1, 64))
	}
	for _, name := range vars {
		fmt.Fprintf(&b, "%s: number\n", name)
	}
	fmt.Fprintf(&b, "out: %s\n", src)
	return b.String()
}

func cacheKey(src string, vars []string, consts map[string]float64) (string, error) {
	for _, name := range vars {
		if !identRe.MatchString(name) {
			return "", fmt.Errorf("%w: variable %q", ErrIdentifier, name)
		}
	}
	for _, name := range sortedKeys(consts) {
		if !identRe.MatchString(name) || name == "out" || name == "math" {
			return "", fmt.Errorf("%w: constant %q", ErrIdentifier, name)
		}
		for _, v := range vars {
			if v == name {
				return "", fmt.Errorf("%w: constant %q shadows a variable", ErrIdentifier, name)
			}
		}
		if math.IsNaN(consts[name]) || math.IsInf(consts[name], 0) {
			return "", fmt.Errorf("%w: constant %q is not finite", ErrIdentifier, name)
		}
	}

	var b strings.Builder
	b.WriteString(src)
	b.WriteString("\x00")
	b.WriteString(strings.Join(vars, ","))
	for _, name := range sortedKeys(consts) {
		fmt.Fprintf(&b, "\x00%s=%v", name, consts[name])
	}
	return b.String(), nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var defaultCompiler = NewCompiler()

// Compile compiles src with the package-level compiler.
func Compile(src string, vars []string, consts map[string]float64) (dynamo.Func, error) {
	return defaultCompiler.Compile(src, vars, consts)
}
