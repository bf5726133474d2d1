package nutrition

import "strings"

func ptr(v float64) *float64 { return &v }

// commonFoods are always offered by search alongside catalog rows, so a fresh
// install has something to log.
var commonFoods = []FoodItem{
	{Name: "Banana", CaloriesPer100g: 89, ProteinPer100g: ptr(1.1), CarbsPer100g: ptr(23), FatPer100g: ptr(0.3)},
	{Name: "Apple", CaloriesPer100g: 52, ProteinPer100g: ptr(0.3), CarbsPer100g: ptr(14), FatPer100g: ptr(0.2)},
	{Name: "Chicken Breast", CaloriesPer100g: 165, ProteinPer100g: ptr(31), CarbsPer100g: ptr(0), FatPer100g: ptr(3.6)},
	{Name: "Rice (cooked)", CaloriesPer100g: 130, ProteinPer100g: ptr(2.7), CarbsPer100g: ptr(28), FatPer100g: ptr(0.3)},
	{Name: "Broccoli", CaloriesPer100g: 34, ProteinPer100g: ptr(2.8), CarbsPer100g: ptr(7), FatPer100g: ptr(0.4)},
	{Name: "Egg", CaloriesPer100g: 155, ProteinPer100g: ptr(13), CarbsPer100g: ptr(1.1), FatPer100g: ptr(11)},
	{Name: "Oats", CaloriesPer100g: 389, ProteinPer100g: ptr(17), CarbsPer100g: ptr(66), FatPer100g: ptr(7)},
	{Name: "Salmon", CaloriesPer100g: 208, ProteinPer100g: ptr(20), CarbsPer100g: ptr(0), FatPer100g: ptr(13)},
}

// SearchCommonFoods returns built-in foods whose name contains query,
// case-insensitively. A blank query matches nothing.
func SearchCommonFoods(query string) []FoodItem {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []FoodItem{}
	if q == "" {
		return out
	}
	for _, f := range commonFoods {
		if strings.Contains(strings.ToLower(f.Name), q) {
			out = append(out, f.clone())
		}
	}
	return out
}

// clone copies the macro pointers so callers cannot edit the built-in table.
func (f FoodItem) clone() FoodItem {
	c := f
	c.ProteinPer100g = copyPtr(f.ProteinPer100g)
	c.CarbsPer100g = copyPtr(f.CarbsPer100g)
	c.FatPer100g = copyPtr(f.FatPer100g)
	return c
}

func copyPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(*v)
}
