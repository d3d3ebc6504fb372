package domain

// Category groups presets in the UI.
type Category string

const (
	CategoryDesktop Category = "Desktop"
	CategoryTablet  Category = "Tablet"
	CategoryMobile  Category = "Mobile"
	CategorySocial  Category = "Social"
	CategoryCustom  Category = "Custom"
)

// Preset is a named viewport size offered to clients.
type Preset struct {
	// Name is the unique identifier of the preset (e.g. "iPhone SE").
	Name string `json:"name"`

	// Width and Height are CSS pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	Category Category `json:"category"`
}

// DefaultPresets are the sizes seeded into an empty store.
var DefaultPresets = []Preset{
	{Name: "Desktop HD", Width: 1920, Height: 1080, Category: CategoryDesktop},
	{Name: "Desktop", Width: 1440, Height: 900, Category: CategoryDesktop},
	{Name: "Laptop", Width: 1366, Height: 768, Category: CategoryDesktop},
	{Name: "Tablet Portrait", Width: 768, Height: 1024, Category: CategoryTablet},
	{Name: "Tablet Landscape", Width: 1024, Height: 768, Category: CategoryTablet},
	{Name: "iPhone 14 Pro", Width: 393, Height: 852, Category: CategoryMobile},
	{Name: "iPhone SE", Width: 375, Height: 667, Category: CategoryMobile},
	{Name: "Android", Width: 412, Height: 915, Category: CategoryMobile},
	{Name: "Twitter Post", Width: 1200, Height: 675, Category: CategorySocial},
	{Name: "Instagram Post", Width: 1080, Height: 1080, Category: CategorySocial},
	{Name: "LinkedIn Post", Width: 1200, Height: 627, Category: CategorySocial},
	{Name: "OG Image", Width: 1200, Height: 630, Category: CategorySocial},
}

// categoryOrder is the display order of categories; unknown ones sort last.
var categoryOrder = map[Category]int{
	CategoryDesktop: 0,
	CategoryTablet:  1,
	CategoryMobile:  2,
	CategorySocial:  3,
	CategoryCustom:  4,
}

// CategoryRank returns the display position of c.
func CategoryRank(c Category) int {
	if r, ok := categoryOrder[c]; ok {
		return r
	}
	return len(categoryOrder)
}
