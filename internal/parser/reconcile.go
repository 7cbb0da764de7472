package parser

// clientIndex keeps clients keyed by common name in first-insertion order.
type clientIndex struct {
	order  []string
	byName map[string]*Client
}

func newClientIndex() *clientIndex {
	return &clientIndex{byName: make(map[string]*Client)}
}

// put stores c under its common name. A repeated name replaces the earlier
// record but keeps the earlier position.
func (ci *clientIndex) put(c *Client) (replaced bool) {
	if _, exists := ci.byName[c.CommonName]; exists {
		ci.byName[c.CommonName] = c
		return true
	}
	ci.order = append(ci.order, c.CommonName)
	ci.byName[c.CommonName] = c
	return false
}

func (ci *clientIndex) get(name string) (*Client, bool) {
	c, ok := ci.byName[name]
	return c, ok
}

func (ci *clientIndex) len() int {
	return len(ci.order)
}

// each visits clients in insertion order.
func (ci *clientIndex) each(fn func(*Client)) {
	for _, name := range ci.order {
		fn(ci.byName[name])
	}
}

// attachRoutes appends each route's virtual address to the client it names.
// Routes for unknown clients are dropped and counted.
func attachRoutes(clients *clientIndex, routes []Route, stats *Stats) {
	for _, route := range routes {
		client, ok := clients.get(route.CommonName)
		if !ok {
			stats.OrphanRoutes++
			continue
		}
		client.VirtualAddresses = append(client.VirtualAddresses, VirtualAddress{
			Address: route.VirtualAddress,
			LastRef: route.LastRef,
		})
	}
}

// mergeByRealAddress collapses clients sharing a real address into the first
// one seen. The result is ordered by first appearance of each address.
// Must run after attachRoutes so merged clients carry their routes along.
func mergeByRealAddress(clients *clientIndex, stats *Stats) []*Client {
	merged := make([]*Client, 0, clients.len())
	byAddress := make(map[string]*Client, clients.len())

	clients.each(func(c *Client) {
		if rep, ok := byAddress[c.RealAddress]; ok {
			rep.VirtualAddresses = append(rep.VirtualAddresses, c.VirtualAddresses...)
			stats.MergedClients++
			return
		}
		byAddress[c.RealAddress] = c
		merged = append(merged, c)
	})

	return merged
}
