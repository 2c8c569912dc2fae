package scraper

// Selectors describes the target catalog's stable DOM contract: how to find
// an item on a search-results page, its sub-fields and the next-page control.
type Selectors struct {
	Item        string
	IDAttribute string
	Title       string
	Price       string
	Orders      string
	Rating      string
	Link        string
	NextPage    string
}

// DefaultSelectors matches the catalog layout this crawler targets.
func DefaultSelectors() Selectors {
	return Selectors{
		Item:        "div.search-item-card",
		IDAttribute: "data-product-id",
		Title:       ".item-title",
		Price:       ".item-price",
		Orders:      ".item-orders",
		Rating:      ".item-rating",
		Link:        "a.item-link",
		NextPage:    "a.pagination-next",
	}
}

// asEvalArg flattens the selector set into the shape shipped across the
// page-evaluation boundary.
func (s Selectors) asEvalArg() map[string]any {
	return map[string]any{
		"item":   s.Item,
		"idAttr": s.IDAttribute,
		"title":  s.Title,
		"price":  s.Price,
		"orders": s.Orders,
		"rating": s.Rating,
		"link":   s.Link,
	}
}

// extractItemsScript runs inside the rendered page. It is self-contained:
// the only input is the selector set passed as its argument, and it returns
// plain objects in document order. Missing sub-fields yield the documented
// sentinels instead of failing the record.
const extractItemsScript = `(sel) => {
	const text = (root, query) => {
		const el = root.querySelector(query);
		return el && el.textContent ? el.textContent.trim() : null;
	};
	const results = [];
	for (const item of document.querySelectorAll(sel.item)) {
		const linkEl = item.querySelector(sel.link);
		results.push({
			id: item.getAttribute(sel.idAttr) || 'N/A',
			title: text(item, sel.title) || 'N/A',
			priceText: text(item, sel.price) || 'N/A',
			orderCountText: text(item, sel.orders) || '0',
			rating: text(item, sel.rating) || 'N/A',
			link: linkEl && linkEl.href ? linkEl.href : 'N/A',
		});
	}
	return results;
}`
