package main

import (
	"context"
	"flag"

	"github.com/joho/godotenv"

	"github.com/pageza/nutrition-engine/backend/config"
	"github.com/pageza/nutrition-engine/backend/internal/database"
	"github.com/pageza/nutrition-engine/backend/internal/logger"
	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
	"github.com/pageza/nutrition-engine/backend/internal/service"
	"github.com/pageza/nutrition-engine/backend/internal/types"
)

type seedItem struct {
	name      string
	category  string
	nutrients nutrition.NutrientVector
	cost      float64
	allergens []string
	tags      []string
}

// starterCatalog is a small USDA-style school menu, per serving.
var starterCatalog = []seedItem{
	{"Oatmeal with raisins", "grains", nutrition.NutrientVector{Calories: 190, Protein: 6, Carbs: 36, Fat: 3, Fiber: 4, Sodium: 110, Sugar: 12}, 0.45, []string{"gluten"}, []string{"breakfast", "vegan"}},
	{"Whole wheat toast", "grains", nutrition.NutrientVector{Calories: 140, Protein: 6, Carbs: 24, Fat: 2, Fiber: 4, Sodium: 220, Sugar: 3}, 0.20, []string{"gluten", "wheat"}, []string{"breakfast", "vegetarian"}},
	{"Scrambled eggs", "eggs", nutrition.NutrientVector{Calories: 150, Protein: 12, Carbs: 2, Fat: 10, Sodium: 280, Sugar: 1}, 0.55, []string{"egg"}, []string{"breakfast", "vegetarian"}},
	{"Low-fat yogurt", "dairy", nutrition.NutrientVector{Calories: 110, Protein: 8, Carbs: 17, Fat: 2, Sodium: 95, Sugar: 14, Minerals: map[string]float64{"calcium": 280}}, 0.50, []string{"milk", "dairy"}, []string{"breakfast", "snack", "vegetarian"}},
	{"1% milk", "dairy", nutrition.NutrientVector{Calories: 110, Protein: 8, Carbs: 12, Fat: 2.5, Sodium: 130, Sugar: 12, Vitamins: map[string]float64{"d": 2.9}, Minerals: map[string]float64{"calcium": 300}}, 0.30, []string{"milk", "dairy"}, []string{"breakfast", "lunch", "snack", "vegetarian"}},
	{"Banana", "fruit", nutrition.NutrientVector{Calories: 105, Protein: 1.3, Carbs: 27, Fat: 0.4, Fiber: 3.1, Sodium: 1, Sugar: 14, Vitamins: map[string]float64{"c": 10}}, 0.25, nil, []string{"breakfast", "snack", "vegan"}},
	{"Apple slices", "fruit", nutrition.NutrientVector{Calories: 95, Protein: 0.5, Carbs: 25, Fat: 0.3, Fiber: 4.4, Sodium: 2, Sugar: 19, Vitamins: map[string]float64{"c": 8}}, 0.35, nil, []string{"lunch", "snack", "vegan"}},
	{"Grilled chicken breast", "poultry", nutrition.NutrientVector{Calories: 190, Protein: 35, Fat: 4, Sodium: 330, Minerals: map[string]float64{"zinc": 1}}, 1.10, nil, []string{"lunch", "dinner", "meat"}},
	{"Turkey sandwich", "entree", nutrition.NutrientVector{Calories: 320, Protein: 22, Carbs: 34, Fat: 9, Fiber: 4, Sodium: 780, Sugar: 5}, 1.25, []string{"gluten", "wheat"}, []string{"lunch", "meat"}},
	{"Bean and cheese burrito", "entree", nutrition.NutrientVector{Calories: 360, Protein: 15, Carbs: 50, Fat: 11, Fiber: 8, Sodium: 640, Sugar: 2, Minerals: map[string]float64{"iron": 3}}, 0.95, []string{"gluten", "milk"}, []string{"lunch", "dinner", "vegetarian"}},
	{"Cheese pizza slice", "entree", nutrition.NutrientVector{Calories: 290, Protein: 13, Carbs: 35, Fat: 10, Fiber: 2, Sodium: 640, Sugar: 4, Minerals: map[string]float64{"calcium": 200}}, 0.85, []string{"gluten", "milk"}, []string{"lunch", "dinner", "vegetarian"}},
	{"Brown rice", "grains", nutrition.NutrientVector{Calories: 215, Protein: 5, Carbs: 45, Fat: 1.8, Fiber: 3.5, Sodium: 10, Minerals: map[string]float64{"magnesium": 84}}, 0.30, nil, []string{"lunch", "dinner", "vegan"}},
	{"Black beans", "legumes", nutrition.NutrientVector{Calories: 225, Protein: 15, Carbs: 40, Fat: 1, Fiber: 15, Sodium: 240, Minerals: map[string]float64{"iron": 3.6}}, 0.40, nil, []string{"lunch", "dinner", "vegan"}},
	{"Steamed broccoli", "vegetables", nutrition.NutrientVector{Calories: 55, Protein: 3.7, Carbs: 11, Fat: 0.6, Fiber: 5, Sodium: 64, Sugar: 2, Vitamins: map[string]float64{"c": 100, "a": 120}}, 0.45, nil, []string{"lunch", "dinner", "vegan"}},
	{"Garden salad", "vegetables", nutrition.NutrientVector{Calories: 45, Protein: 2, Carbs: 8, Fat: 0.5, Fiber: 3, Sodium: 40, Sugar: 4, Vitamins: map[string]float64{"a": 300}}, 0.60, nil, []string{"lunch", "dinner", "vegan"}},
	{"Baked salmon", "fish", nutrition.NutrientVector{Calories: 230, Protein: 25, Fat: 14, Sodium: 75, Vitamins: map[string]float64{"d": 11, "b12": 2.6}}, 1.80, []string{"fish"}, []string{"dinner"}},
	{"Whole wheat spaghetti", "grains", nutrition.NutrientVector{Calories: 270, Protein: 11, Carbs: 54, Fat: 2, Fiber: 7, Sodium: 300, Sugar: 6}, 0.55, []string{"gluten", "wheat"}, []string{"dinner", "vegetarian"}},
	{"Hummus with carrots", "legumes", nutrition.NutrientVector{Calories: 150, Protein: 5, Carbs: 15, Fat: 8, Fiber: 5, Sodium: 250, Sugar: 3}, 0.70, []string{"sesame"}, []string{"snack", "vegan"}},
	{"Peanut butter crackers", "snack", nutrition.NutrientVector{Calories: 190, Protein: 5, Carbs: 21, Fat: 10, Fiber: 1, Sodium: 260, Sugar: 4}, 0.40, []string{"peanuts", "gluten"}, []string{"snack", "vegetarian"}},
	{"String cheese", "dairy", nutrition.NutrientVector{Calories: 80, Protein: 7, Carbs: 1, Fat: 6, Sodium: 200, Minerals: map[string]float64{"calcium": 200}}, 0.35, []string{"milk", "dairy"}, []string{"snack", "vegetarian"}},
}

func main() {
	schoolID := flag.String("school", "", "School the catalog belongs to")
	flag.Parse()

	_ = godotenv.Load()

	log, err := logger.New("development")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if *schoolID == "" {
		log.Fatal("the -school flag is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load configuration", "error", err)
	}
	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	if err := database.RunMigrations(db, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", "error", err)
	}

	catalog := service.NewCatalogService(db)
	ctx := context.Background()
	for _, it := range starterCatalog {
		item, err := catalog.CreateItem(ctx, &types.CatalogItemRequest{
			SchoolID:  *schoolID,
			Name:      it.name,
			Category:  it.category,
			Nutrients: it.nutrients,
			Cost:      it.cost,
			Allergens: it.allergens,
			Tags:      it.tags,
		})
		if err != nil {
			log.Fatal("failed to seed item", "name", it.name, "error", err)
		}
		log.Info("seeded catalog item", "id", item.ID, "name", item.Name)
	}
	log.Info("seeding complete", "school_id", *schoolID, "items", len(starterCatalog))
}
