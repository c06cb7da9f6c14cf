package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseSnippets decodes a listing response body and returns the entries of
// `response.snippets`. It only errors when body is not JSON at all, any other
// deviation from the expected shape yields no snippets. FetchAndExtract
// treats both cases as a listing without items.
func ParseSnippets(body []byte) ([]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var root any
	err := decoder.Decode(&root)
	if err != nil {
		return nil, fmt.Errorf("decode listing response: %w", err)
	}

	snippets, ok := lookup(root, "response", "snippets").([]any)
	if !ok {
		return nil, nil
	}
	return snippets, nil
}

// lookup walks a path of object keys, it returns nil as soon as a node on
// the path is not an object or lacks the key.
func lookup(node any, path ...string) any {
	for _, key := range path {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = obj[key]
	}
	return node
}

// ExtractItem returns the catalog item of a snippet. ok is false when the
// snippet has no `data` object or no `data.atc_action.add_to_cart.cart_item`
// object, which means the snippet is not a purchasable product.
func ExtractItem(snippet any) (item CatalogItem, ok bool) {
	data, ok := lookup(snippet, "data").(map[string]any)
	if !ok {
		return CatalogItem{}, false
	}
	cartItem, ok := lookup(data, "atc_action", "add_to_cart", "cart_item").(map[string]any)
	if !ok {
		return CatalogItem{}, false
	}

	return CatalogItem{
		CartItem:  extractCartItem(cartItem),
		Sponsored: extractSponsored(snippet, data),
	}, true
}

func extractCartItem(cartItem map[string]any) CartItem {
	inventory := numeric(cartItem["inventory"])
	inventoryText := scalarOr(cartItem["inventory"], "0")

	brand := scalarOr(cartItem["brand"], "")
	brandID := scalarOr(cartItem["brand_id"], brand)

	return CartItem{
		MerchantID:  scalarOr(cartItem["merchant_id"], ""),
		ProductID:   scalarOr(cartItem["product_id"], ""),
		ProductName: scalarOr(cartItem["product_name"], ""),
		GroupID:     scalarOr(cartItem["group_id"], ""),
		Price:       scalarOr(cartItem["price"], ""),
		Mrp:         scalarOr(cartItem["mrp"], ""),
		Inventory:   inventoryText,
		InStock:     inventory > 0,
		ImageURL:    scalarOr(cartItem["image_url"], ""),
		BrandID:     brandID,
		Brand:       brand,
	}
}

// the flag lives on the snippet itself in observed responses, older
// responses carried it inside `data`
func extractSponsored(snippet any, data map[string]any) string {
	for _, node := range []any{snippet, data} {
		flag := lookup(node, "tracking", "impression_map", "is_sponsored")
		switch v := flag.(type) {
		case nil:
			continue
		case bool:
			if v {
				return "1"
			}
			return "0"
		default:
			return scalarOr(v, "0")
		}
	}
	return "0"
}

// scalarOr renders a json scalar, falling back to def when the value is
// missing, null, false, zero, an empty string or not a scalar.
func scalarOr(value any, def string) string {
	switch v := value.(type) {
	case string:
		if v == "" {
			return def
		}
		return v
	case json.Number:
		return renderNumber(v, def)
	case bool:
		if !v {
			return def
		}
		return "true"
	default:
		return def
	}
}

func renderNumber(n json.Number, def string) string {
	if i, err := n.Int64(); err == nil {
		if i == 0 {
			return def
		}
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) {
		return def
	}
	if f == 0 {
		return def
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// numeric interprets a json scalar as a number, non numeric values are 0.
func numeric(value any) float64 {
	var text string
	switch v := value.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return f
}

// ExtractRows turns every purchasable snippet into a row, preserving snippet
// order. skipped counts snippets that were not products.
func ExtractRows(date string, cat Category, snippets []any) (rows []Row, skipped int) {
	for _, snippet := range snippets {
		item, ok := ExtractItem(snippet)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, NewRow(date, cat, item))
	}
	return rows, skipped
}
