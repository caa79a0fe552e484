package models

// Facility attaches one amenity code to a post. Several rows per post are
// allowed and the same code may appear more than once.
type Facility struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	PostID uint   `json:"post_id" gorm:"index;not null"`
	Code   string `json:"code" gorm:"size:30;not null"`
}

// FacilityOption is a selectable entry of the facility catalog
type FacilityOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// FacilityCatalog is the fixed set of facilities a post can carry
var FacilityCatalog = []FacilityOption{
	{Code: "parking", Label: "Parking"},
	{Code: "wifi", Label: "Wi-Fi"},
	{Code: "restroom", Label: "Restroom"},
	{Code: "pet", Label: "Pet friendly"},
	{Code: "wheelchair", Label: "Wheelchair access"},
	{Code: "kids", Label: "Kids zone"},
	{Code: "reservation", Label: "Reservation"},
	{Code: "takeout", Label: "Takeout"},
	{Code: "delivery", Label: "Delivery"},
	{Code: "outlet", Label: "Power outlets"},
}

// IsFacilityCode reports whether code is in the catalog
func IsFacilityCode(code string) bool {
	for _, f := range FacilityCatalog {
		if f.Code == code {
			return true
		}
	}
	return false
}
