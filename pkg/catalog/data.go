package catalog

// seasonal order: Summer, Monsoon, Winter, Spring, Autumn
func defaultProducts() []Product {
	return []Product{
		// Fertilizers
		{Name: "Urea", Category: Fertilizers, BaseDemand: 85, SeasonalFactor: SeasonalFactors{1.2, 1.5, 0.9, 1.3, 1.1}},
		{Name: "DAP", Category: Fertilizers, BaseDemand: 80, SeasonalFactor: SeasonalFactors{1.1, 1.6, 0.8, 1.4, 1.0}},
		{Name: "NPK", Category: Fertilizers, BaseDemand: 75, SeasonalFactor: SeasonalFactors{1.3, 1.4, 0.9, 1.5, 1.2}},
		{Name: "Potash", Category: Fertilizers, BaseDemand: 70, SeasonalFactor: SeasonalFactors{1.0, 1.3, 0.8, 1.2, 1.0}},
		{Name: "Organic Compost", Category: Fertilizers, BaseDemand: 90, SeasonalFactor: SeasonalFactors{1.1, 1.2, 1.0, 1.4, 1.3}},
		{Name: "Vermicompost", Category: Fertilizers, BaseDemand: 85, SeasonalFactor: SeasonalFactors{1.2, 1.3, 1.0, 1.5, 1.2}},
		{Name: "Phosphate", Category: Fertilizers, BaseDemand: 72, SeasonalFactor: SeasonalFactors{1.1, 1.4, 0.9, 1.3, 1.0}},
		{Name: "Zinc Sulphate", Category: Fertilizers, BaseDemand: 65, SeasonalFactor: SeasonalFactors{1.0, 1.2, 0.8, 1.1, 0.9}},
		{Name: "Boron", Category: Fertilizers, BaseDemand: 60, SeasonalFactor: SeasonalFactors{0.9, 1.1, 0.8, 1.2, 1.0}},
		{Name: "Calcium Nitrate", Category: Fertilizers, BaseDemand: 68, SeasonalFactor: SeasonalFactors{1.0, 1.3, 0.9, 1.2, 1.0}},

		// Seeds
		{Name: "Rice Seeds", Category: Seeds, BaseDemand: 95, SeasonalFactor: SeasonalFactors{1.5, 1.6, 0.7, 1.3, 1.0}},
		{Name: "Wheat Seeds", Category: Seeds, BaseDemand: 90, SeasonalFactor: SeasonalFactors{0.8, 0.7, 1.6, 1.2, 1.4}},
		{Name: "Cotton Seeds", Category: Seeds, BaseDemand: 88, SeasonalFactor: SeasonalFactors{1.4, 1.2, 0.8, 1.5, 1.0}},
		{Name: "Soybean Seeds", Category: Seeds, BaseDemand: 82, SeasonalFactor: SeasonalFactors{1.3, 1.5, 0.9, 1.2, 1.1}},
		{Name: "Corn Seeds", Category: Seeds, BaseDemand: 85, SeasonalFactor: SeasonalFactors{1.4, 1.3, 0.8, 1.5, 1.0}},
		{Name: "Sunflower Seeds", Category: Seeds, BaseDemand: 75, SeasonalFactor: SeasonalFactors{1.5, 1.0, 0.9, 1.4, 1.2}},
		{Name: "Chickpea Seeds", Category: Seeds, BaseDemand: 78, SeasonalFactor: SeasonalFactors{0.9, 0.8, 1.5, 1.3, 1.4}},
		{Name: "Mustard Seeds", Category: Seeds, BaseDemand: 70, SeasonalFactor: SeasonalFactors{0.8, 0.9, 1.6, 1.2, 1.5}},
		{Name: "Tomato Seeds", Category: Seeds, BaseDemand: 80, SeasonalFactor: SeasonalFactors{1.2, 1.1, 1.4, 1.3, 1.2}},
		{Name: "Onion Seeds", Category: Seeds, BaseDemand: 77, SeasonalFactor: SeasonalFactors{1.1, 1.2, 1.3, 1.4, 1.3}},

		// Pesticides
		{Name: "Insecticide", Category: Pesticides, BaseDemand: 92, SeasonalFactor: SeasonalFactors{1.5, 1.6, 0.8, 1.4, 1.2}},
		{Name: "Fungicide", Category: Pesticides, BaseDemand: 88, SeasonalFactor: SeasonalFactors{1.2, 1.7, 0.9, 1.3, 1.1}},
		{Name: "Herbicide", Category: Pesticides, BaseDemand: 85, SeasonalFactor: SeasonalFactors{1.3, 1.4, 0.9, 1.5, 1.2}},
		{Name: "Nematicide", Category: Pesticides, BaseDemand: 70, SeasonalFactor: SeasonalFactors{1.1, 1.3, 0.8, 1.2, 1.0}},
		{Name: "Rodenticide", Category: Pesticides, BaseDemand: 65, SeasonalFactor: SeasonalFactors{1.0, 1.2, 1.1, 1.1, 1.2}},
		{Name: "Bactericide", Category: Pesticides, BaseDemand: 72, SeasonalFactor: SeasonalFactors{1.2, 1.5, 0.9, 1.3, 1.1}},
		{Name: "Bio-Pesticide", Category: Pesticides, BaseDemand: 78, SeasonalFactor: SeasonalFactors{1.3, 1.4, 1.0, 1.5, 1.3}},
		{Name: "Growth Regulator", Category: Pesticides, BaseDemand: 68, SeasonalFactor: SeasonalFactors{1.2, 1.3, 0.9, 1.4, 1.1}},
		{Name: "Plant Tonic", Category: Pesticides, BaseDemand: 75, SeasonalFactor: SeasonalFactors{1.1, 1.2, 1.0, 1.3, 1.2}},
		{Name: "Weedicide", Category: Pesticides, BaseDemand: 82, SeasonalFactor: SeasonalFactors{1.4, 1.5, 0.9, 1.6, 1.3}},
	}
}

func defaultWeatherImpact() WeatherImpact {
	return WeatherImpact{
		Hot:    {ClassFertilizer: 1.15, ClassSeed: 1.10, ClassPesticide: 1.20},
		Rainy:  {ClassFertilizer: 1.30, ClassSeed: 1.25, ClassPesticide: 1.40},
		Cold:   {ClassFertilizer: 0.85, ClassSeed: 0.80, ClassPesticide: 0.90},
		Normal: {ClassFertilizer: 1.0, ClassSeed: 1.0, ClassPesticide: 1.0},
		Humid:  {ClassFertilizer: 1.10, ClassSeed: 1.05, ClassPesticide: 1.35},
		Dry:    {ClassFertilizer: 0.90, ClassSeed: 0.85, ClassPesticide: 0.95},
	}
}
