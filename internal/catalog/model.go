package catalog

// Location is a point the listing is requested for. Coordinates are kept
// exactly as they appear in the input file, they are forwarded verbatim as
// request headers.
type Location struct {
	Latitude  string
	Longitude string
}

// Category is a (level 1, level 2) category pair of the catalog.
type Category struct {
	L1Name string
	L1ID   string
	L2Name string
	L2ID   string
}

// CartItem is the purchasable product payload of a snippet, every field is
// already rendered to its output form.
type CartItem struct {
	MerchantID  string
	ProductID   string
	ProductName string
	GroupID     string
	Price       string
	Mrp         string
	// Inventory is "0" when the upstream value is missing or falsy.
	Inventory string
	InStock   bool
	ImageURL  string
	BrandID   string
	Brand     string
}

// CatalogItem is what a single snippet contributes to the output.
type CatalogItem struct {
	CartItem CartItem
	// Sponsored is "0" when the snippet has no sponsorship flag.
	Sponsored string
}

// Header is the fixed column order of every output row.
var Header = []string{
	"date",
	"l1_category",
	"l1_category_id",
	"l2_category",
	"l2_category_id",
	"store_id",
	"variant_id",
	"variant_name",
	"group_id",
	"selling_price",
	"mrp",
	"in_stock",
	"inventory",
	"is_sponsored",
	"image_url",
	"brand_id",
	"brand",
}

// Row is one persisted record, produced from one (Location, Category, CatalogItem).
type Row struct {
	Date         string
	L1Category   string
	L1CategoryID string
	L2Category   string
	L2CategoryID string
	StoreID      string
	VariantID    string
	VariantName  string
	GroupID      string
	SellingPrice string
	Mrp          string
	InStock      string
	Inventory    string
	IsSponsored  string
	ImageURL     string
	BrandID      string
	Brand        string
}

// Values returns the fields of the row in Header order.
func (r Row) Values() []string {
	return []string{
		r.Date,
		r.L1Category,
		r.L1CategoryID,
		r.L2Category,
		r.L2CategoryID,
		r.StoreID,
		r.VariantID,
		r.VariantName,
		r.GroupID,
		r.SellingPrice,
		r.Mrp,
		r.InStock,
		r.Inventory,
		r.IsSponsored,
		r.ImageURL,
		r.BrandID,
		r.Brand,
	}
}

// NewRow flattens a catalog item into a row.
func NewRow(date string, cat Category, item CatalogItem) Row {
	inStock := "0"
	if item.CartItem.InStock {
		inStock = "1"
	}
	return Row{
		Date:         date,
		L1Category:   cat.L1Name,
		L1CategoryID: cat.L1ID,
		L2Category:   cat.L2Name,
		L2CategoryID: cat.L2ID,
		StoreID:      item.CartItem.MerchantID,
		VariantID:    item.CartItem.ProductID,
		VariantName:  item.CartItem.ProductName,
		GroupID:      item.CartItem.GroupID,
		SellingPrice: item.CartItem.Price,
		Mrp:          item.CartItem.Mrp,
		InStock:      inStock,
		Inventory:    item.CartItem.Inventory,
		IsSponsored:  item.Sponsored,
		ImageURL:     item.CartItem.ImageURL,
		BrandID:      item.CartItem.BrandID,
		Brand:        item.CartItem.Brand,
	}
}
