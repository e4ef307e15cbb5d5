package catalog

import "strings"

// Season is one of the five selling seasons the catalog is tuned for.
type Season int

const (
	Summer Season = iota
	Monsoon
	Winter
	Spring
	Autumn
	seasonCount
)

var seasonNames = [seasonCount]string{"Summer", "Monsoon", "Winter", "Spring", "Autumn"}

func (s Season) String() string {
	if s < 0 || s >= seasonCount {
		return "Unknown"
	}
	return seasonNames[s]
}

// Seasons returns every season in table order.
func Seasons() []Season {
	return []Season{Summer, Monsoon, Winter, Spring, Autumn}
}

// SeasonNames returns the accepted season names in table order.
func SeasonNames() []string {
	return append([]string(nil), seasonNames[:]...)
}

// ParseSeason accepts only the exact enumerated names.
func ParseSeason(name string) (Season, error) {
	for i, n := range seasonNames {
		if n == name {
			return Season(i), nil
		}
	}
	return 0, &ValidationError{Field: "season", Value: name, Allowed: SeasonNames()}
}

// Weather is the observed or forecast weather condition.
type Weather int

const (
	Hot Weather = iota
	Rainy
	Cold
	Normal
	Humid
	Dry
	weatherCount
)

var weatherNames = [weatherCount]string{"Hot", "Rainy", "Cold", "Normal", "Humid", "Dry"}

func (w Weather) String() string {
	if w < 0 || w >= weatherCount {
		return "Unknown"
	}
	return weatherNames[w]
}

// Weathers returns every weather condition in table order.
func Weathers() []Weather {
	return []Weather{Hot, Rainy, Cold, Normal, Humid, Dry}
}

// WeatherNames returns the accepted weather names in table order.
func WeatherNames() []string {
	return append([]string(nil), weatherNames[:]...)
}

// ParseWeather accepts only the exact enumerated names.
func ParseWeather(name string) (Weather, error) {
	for i, n := range weatherNames {
		if n == name {
			return Weather(i), nil
		}
	}
	return 0, &ValidationError{Field: "weather", Value: name, Allowed: WeatherNames()}
}

// Category is the catalog grouping a product is listed under.
type Category int

const (
	Fertilizers Category = iota
	Seeds
	Pesticides
	categoryCount
)

var categoryNames = [categoryCount]string{"Fertilizers", "Seeds", "Pesticides"}

func (c Category) String() string {
	if c < 0 || c >= categoryCount {
		return "Unknown"
	}
	return categoryNames[c]
}

// Categories returns the categories in catalog order.
func Categories() []Category {
	return []Category{Fertilizers, Seeds, Pesticides}
}

// CategoryNames returns the display names of the categories in catalog order.
func CategoryNames() []string {
	return append([]string(nil), categoryNames[:]...)
}

// CategoryClass is the singular key used by the weather impact table.
type CategoryClass string

const (
	ClassFertilizer CategoryClass = "fertilizer"
	ClassSeed       CategoryClass = "seed"
	ClassPesticide  CategoryClass = "pesticide"
)

// classByCategoryName maps the plural display name to its weather class.
var classByCategoryName = map[string]CategoryClass{
	"Fertilizers": ClassFertilizer,
	"Seeds":       ClassSeed,
	"Pesticides":  ClassPesticide,
}

// Class returns the weather table key for the category.
func (c Category) Class() CategoryClass {
	return classByCategoryName[c.String()]
}

// ClassOf resolves a category display name to its weather class. Singular
// class names are accepted as-is; matching ignores case and surrounding space.
func ClassOf(category string) (CategoryClass, bool) {
	trimmed := strings.TrimSpace(category)
	for name, class := range classByCategoryName {
		if strings.EqualFold(name, trimmed) || strings.EqualFold(string(class), trimmed) {
			return class, true
		}
	}
	return "", false
}

// ParseCategory resolves a display name such as "Seeds".
func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, &ValidationError{Field: "category", Value: name, Allowed: CategoryNames()}
}

func (s Season) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Season) UnmarshalText(b []byte) error {
	v, err := ParseSeason(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (w Weather) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

func (w *Weather) UnmarshalText(b []byte) error {
	v, err := ParseWeather(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
