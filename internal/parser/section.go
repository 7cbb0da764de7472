package parser

// Section identifies which part of the status report a line belongs to.
type Section int

const (
	SectionNone    Section = iota // before the first marker
	SectionHeader                 // OpenVPN CLIENT LIST
	SectionRouting                // ROUTING TABLE
	SectionStats                  // GLOBAL STATS
	SectionDone                   // END
)

// Marker lines emitted by the OpenVPN status file (version 1 layout).
const (
	MarkerClientList = "OpenVPN CLIENT LIST"
	MarkerRouting    = "ROUTING TABLE"
	MarkerStats      = "GLOBAL STATS"
	MarkerEnd        = "END"
)

func (s Section) String() string {
	switch s {
	case SectionNone:
		return "none"
	case SectionHeader:
		return "header"
	case SectionRouting:
		return "routing"
	case SectionStats:
		return "stats"
	case SectionDone:
		return "done"
	default:
		return "unknown"
	}
}

// markerSection reports the section a marker line switches to.
// The match is exact; markers are never passed on to extractors.
func markerSection(line string) (Section, bool) {
	switch line {
	case MarkerClientList:
		return SectionHeader, true
	case MarkerRouting:
		return SectionRouting, true
	case MarkerStats:
		return SectionStats, true
	case MarkerEnd:
		return SectionDone, true
	}
	return SectionNone, false
}
