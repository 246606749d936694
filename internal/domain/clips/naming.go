package clips

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const autoPrefix = "clip"

// Namer hands out output filenames for a batch of clips. Unnamed clips get
// clip<N> numbers continuing after the highest clip<N> already present, so
// earlier runs into the same directory are never overwritten.
type Namer struct {
	ext  string
	re   *regexp.Regexp
	next int
}

// NewNamer builds a namer from the names currently in the output directory.
// ext is the target extension without the dot.
func NewNamer(existing []string, ext string) *Namer {
	n := &Namer{
		ext:  "." + ext,
		re:   regexp.MustCompile(`^` + autoPrefix + `(\d+)\.` + regexp.QuoteMeta(ext) + `$`),
		next: 1,
	}
	for _, name := range existing {
		n.observe(name)
	}
	return n
}

// Name returns the filename for a clip. requested may be empty.
func (n *Namer) Name(requested string) string {
	name := sanitize(requested)
	if name == "" {
		name = autoPrefix + strconv.Itoa(n.next) + n.ext
	} else if !strings.HasSuffix(strings.ToLower(name), n.ext) {
		name += n.ext
	}
	n.observe(name)
	return name
}

func (n *Namer) observe(name string) {
	m := n.re.FindStringSubmatch(name)
	if m == nil {
		return
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return
	}
	if v+1 > n.next {
		n.next = v + 1
	}
}

func sanitize(name string) string {
	name = strings.TrimSpace(norm.NFC.String(name))
	return strings.NewReplacer("/", "_", "\\", "_").Replace(name)
}
