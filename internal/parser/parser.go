package parser

// Stats counts what the parser saw and what it threw away. Dropped lines
// never affect the output; the counters exist for diagnostics.
type Stats struct {
	Lines          int  `json:"lines"`
	Blank          int  `json:"blank"`
	Markers        int  `json:"markers"`
	Captions       int  `json:"captions"`
	Unsectioned    int  `json:"unsectioned"`
	DroppedHeader  int  `json:"dropped_header"`
	DroppedRouting int  `json:"dropped_routing"`
	DroppedStats   int  `json:"dropped_stats"`
	ReplacedNames  int  `json:"replaced_names"`
	Routes         int  `json:"routes"`
	OrphanRoutes   int  `json:"orphan_routes"`
	MergedClients  int  `json:"merged_clients"`
	Terminated     bool `json:"terminated"`
}

// Dropped returns the number of malformed rows across all sections.
func (s Stats) Dropped() int {
	return s.DroppedHeader + s.DroppedRouting + s.DroppedStats
}

// Result contains the parsed document and the parse statistics
type Result struct {
	Document *Document
	Stats    Stats
}

// Parser turns the lines of one status snapshot into a Document.
// A Parser is single-use; create a new one per snapshot.
type Parser struct {
	section Section
	doc     *Document
	clients *clientIndex
	routes  []Route
	stats   Stats
}

// New creates a new parser instance
func New() *Parser {
	return &Parser{
		section: SectionNone,
		doc:     NewDocument(),
		clients: newClientIndex(),
	}
}

// Parse is shorthand for New().Parse(lines).
func Parse(lines []string) *Result {
	return New().Parse(lines)
}

// Parse classifies every line, extracts the section records, then attaches
// routes to clients and merges clients by real address, in that order.
func (p *Parser) Parse(lines []string) *Result {
	for _, line := range lines {
		if p.section == SectionDone {
			break
		}
		p.stats.Lines++
		p.feed(line)
	}

	p.stats.Routes = len(p.routes)
	attachRoutes(p.clients, p.routes, &p.stats)
	p.doc.Clients = mergeByRealAddress(p.clients, &p.stats)

	return &Result{
		Document: p.doc,
		Stats:    p.stats,
	}
}

// feed advances the section state machine by one line.
func (p *Parser) feed(line string) {
	if next, ok := markerSection(line); ok {
		p.stats.Markers++
		p.section = next
		if next == SectionDone {
			p.stats.Terminated = true
		}
		return
	}

	if line == "" {
		p.stats.Blank++
		return
	}

	switch p.section {
	case SectionHeader:
		p.extractHeader(line)
	case SectionRouting:
		p.extractRoute(line)
	case SectionStats:
		p.extractStat(line)
	default:
		p.stats.Unsectioned++
	}
}
