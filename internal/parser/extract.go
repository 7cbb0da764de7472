package parser

import "strings"

// Caption lines that precede the rows of a section.
const (
	updatedPrefix        = "Updated,"
	clientCaptionPrefix  = "Common Name,Real Address,"
	routingCaptionPrefix = "Virtual Address,Common Name,"
)

// Minimum field counts for a row to be accepted.
const (
	clientFields  = 5
	routingFields = 4
	statsFields   = 2
)

// extractHeader handles a line of the client list section.
func (p *Parser) extractHeader(line string) {
	switch {
	case strings.HasPrefix(line, updatedPrefix):
		p.doc.Updated = strings.Split(line, ",")[1]
	case strings.HasPrefix(line, clientCaptionPrefix):
		p.stats.Captions++
	case strings.Contains(line, ","):
		fields := strings.Split(line, ",")
		if len(fields) < clientFields {
			p.stats.DroppedHeader++
			return
		}
		// Last write wins for a repeated common name.
		// TODO: decide whether a repeated name should merge its routes instead of replacing.
		replaced := p.clients.put(&Client{
			CommonName:       fields[0],
			RealAddress:      fields[1],
			BytesReceived:    fields[2],
			BytesSent:        fields[3],
			ConnectedSince:   fields[4],
			VirtualAddresses: []VirtualAddress{},
		})
		if replaced {
			p.stats.ReplacedNames++
		}
	default:
		p.stats.DroppedHeader++
	}
}

// extractRoute handles a line of the routing table section.
func (p *Parser) extractRoute(line string) {
	switch {
	case strings.HasPrefix(line, routingCaptionPrefix):
		p.stats.Captions++
	case strings.Contains(line, ","):
		fields := strings.Split(line, ",")
		if len(fields) < routingFields {
			p.stats.DroppedRouting++
			return
		}
		p.routes = append(p.routes, Route{
			VirtualAddress: fields[0],
			CommonName:     fields[1],
			RealAddress:    fields[2],
			LastRef:        fields[3],
		})
	default:
		p.stats.DroppedRouting++
	}
}

// extractStat handles a line of the global stats section.
func (p *Parser) extractStat(line string) {
	if !strings.Contains(line, ",") {
		p.stats.DroppedStats++
		return
	}
	fields := strings.Split(line, ",")
	if len(fields) != statsFields {
		p.stats.DroppedStats++
		return
	}
	p.doc.GlobalStats[fields[0]] = fields[1]
}
