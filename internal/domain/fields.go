package domain

// FieldKind says how a draft value is coerced when the payload is assembled.
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
	KindOption
	KindFlag
	KindMedia
)

// Field describes one base-step field of the product form.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	// Nullable fields are sent as an explicit null when empty.
	Nullable bool
	// Positive numbers must parse to a value greater than zero.
	Positive bool
	MaxLen   int
	Enum     []string
}

var baseFields = []Field{
	{Name: "name", Label: "Product Name", Kind: KindString, Required: true},
	{Name: "sku", Label: "SKU", Kind: KindString, Required: true},
	{Name: "slug", Label: "Slug", Kind: KindString, Required: true},
	{Name: "productIdentifier", Label: "Product Identifier", Kind: KindString, Required: true},
	{Name: "locationCode", Label: "Location Code", Kind: KindString, Required: true, Nullable: true, MaxLen: 3},
	{Name: "css", Label: "CSS", Kind: KindString, Nullable: true},
	{Name: "newCategoryId", Label: "Category", Kind: KindOption, Required: true},
	{Name: "structureId", Label: "Structure", Kind: KindOption, Required: true},
	{Name: "subStructureId", Label: "Sub Structure", Kind: KindOption},
	{Name: "contentId", Label: "Content", Kind: KindOption, Required: true},
	{Name: "gsm", Label: "GSM", Kind: KindNumber, Required: true, Positive: true},
	{Name: "oz", Label: "OZ", Kind: KindNumber, Required: true, Positive: true},
	{Name: "cm", Label: "CM", Kind: KindNumber, Required: true, Positive: true},
	{Name: "inch", Label: "Inch", Kind: KindNumber, Required: true, Positive: true},
	{Name: "quantity", Label: "Quantity", Kind: KindNumber, Nullable: true, Positive: true},
	{Name: "um", Label: "Unit", Kind: KindString, Required: true, Enum: []string{"meter", "yard", "kgs"}},
	{Name: "currency", Label: "Currency", Kind: KindString, Required: true, Enum: []string{"INR", "USD"}},
	{Name: "finishId", Label: "Finish", Kind: KindOption, Required: true},
	{Name: "subFinishId", Label: "Sub Finish", Kind: KindOption},
	{Name: "designId", Label: "Design", Kind: KindOption, Required: true},
	{Name: "colorId", Label: "Color", Kind: KindOption, Required: true},
	{Name: "motifsizeId", Label: "Motif Size", Kind: KindOption, Required: true},
	{Name: "suitableforId", Label: "Suitable For", Kind: KindOption, Required: true, Nullable: true},
	{Name: "subSuitableId", Label: "Sub Suitable For", Kind: KindOption, Nullable: true},
	{Name: "vendorId", Label: "Vendor", Kind: KindOption, Required: true, Nullable: true},
	{Name: "groupcodeId", Label: "Group Code", Kind: KindOption, Required: true, Nullable: true},
	{Name: "purchasePrice", Label: "Purchase Price", Kind: KindNumber, Required: true, Positive: true},
	{Name: "salesPrice", Label: "Sales Price", Kind: KindNumber, Required: true, Positive: true},
	{Name: "popularproduct", Label: "Popular Product", Kind: KindFlag},
	{Name: "topratedproduct", Label: "Top Rated Product", Kind: KindFlag},
	{Name: "productoffer", Label: "Product Offer", Kind: KindFlag},
	{Name: "productdescription", Label: "Product Description", Kind: KindString},
	{Name: "image", Label: "Image", Kind: KindMedia},
	{Name: "image1", Label: "Image 1", Kind: KindMedia},
	{Name: "image2", Label: "Image 2", Kind: KindMedia},
	{Name: "video", Label: "Video", Kind: KindMedia},
}

var fieldIndex = func() map[string]Field {
	idx := make(map[string]Field, len(baseFields))
	for _, f := range baseFields {
		idx[f.Name] = f
	}
	return idx
}()

// MediaSlots are the upload slots in form order.
var MediaSlots = []string{"image", "image1", "image2", "video"}

// FlagFields hold "yes"/"no" toggles.
var FlagFields = []string{"popularproduct", "topratedproduct", "productoffer"}

// BaseFields returns the base-step field catalogue in form order.
func BaseFields() []Field {
	return append([]Field(nil), baseFields...)
}

// IsMediaSlot reports whether name is an upload slot.
func IsMediaSlot(name string) bool {
	f, ok := fieldIndex[name]
	return ok && f.Kind == KindMedia
}

// Label returns the human label for a field, falling back to the name.
func Label(name string) string {
	if f, ok := fieldIndex[name]; ok {
		return f.Label
	}
	if f, ok := seoFieldLabels[name]; ok {
		return f
	}
	return name
}
