package layer

import "github.com/pkg/errors"

// Hard ceiling on the page size, regardless of what the layer advertises.
const maxPageSize = 500

// Pager is a lazy, finite, non-restartable sequence of feature pages.
// Each call to Next performs at most the network requests needed for one
// page; a failed request halves the page size and retries without
// consuming identifiers.
//
//	pages := l.Pages(0)
//	for pages.Next() {
//		use(pages.Collection())
//	}
//	if err := pages.Err(); err != nil { ... }
type Pager struct {
	layer      *Layer
	remaining  []int64
	pageSize   int
	collection *FeatureCollection
	err        error
	started    bool
}

// Pages begins paging over the captured object-id snapshot. The page size
// starts at the smallest of perPage (when positive), the layer's
// advertised max record count, and the hard ceiling.
func (l *Layer) Pages(perPage int) *Pager {
	size := maxPageSize
	if l.meta.MaxRecordCount > 0 && l.meta.MaxRecordCount < size {
		size = l.meta.MaxRecordCount
	}
	if perPage > 0 && perPage < size {
		size = perPage
	}
	return &Pager{
		layer:     l,
		remaining: append([]int64(nil), l.objectIDs...),
		pageSize:  size,
	}
}

// Next advances to the next page, blocking on the underlying request.
// It returns false once the identifier set is exhausted or a fatal error
// occurred; check Err afterwards.
func (p *Pager) Next() bool {
	if p.err != nil {
		return false
	}

	if len(p.remaining) == 0 {
		if p.started {
			return false
		}
		// An empty identifier set still yields exactly one empty page.
		p.started = true
		p.collection = p.layer.newCollection()
		return true
	}
	p.started = true

	for {
		n := p.pageSize
		if n > len(p.remaining) {
			n = len(p.remaining)
		}

		resp, err := p.layer.queryFeatures(p.remaining[:n])
		if err != nil {
			p.pageSize /= 2
			if p.pageSize == 0 {
				p.err = errors.Wrap(err, "page fetch failed")
				return false
			}
			continue
		}

		// Identifiers are consumed by request count, not by returned
		// features: ids with no matching feature are dropped silently.
		p.remaining = p.remaining[n:]

		fc := p.layer.newCollection()
		for i := range resp.Features {
			f, ok, err := p.layer.decodeFeature(&resp.Features[i])
			if err != nil {
				p.err = err
				return false
			}
			if !ok {
				continue
			}
			fc.Features = append(fc.Features, f)
		}
		p.collection = fc
		return true
	}
}

// Collection returns the page produced by the last successful Next.
func (p *Pager) Collection() *FeatureCollection { return p.collection }

// Err returns the fatal error that terminated paging, if any.
func (p *Pager) Err() error { return p.err }
