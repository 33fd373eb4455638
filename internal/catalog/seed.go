package catalog

import (
	"fmt"
	"log"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
)

var seedCategories = []models.Category{
	{ID: 1, Name: "Clothes", Slug: "clothes", Image: "https://i.imgur.com/QkIa5tT.jpeg"},
	{ID: 2, Name: "Electronics", Slug: "electronics", Image: "https://i.imgur.com/ZANVnHE.jpeg"},
	{ID: 3, Name: "Furniture", Slug: "furniture", Image: "https://i.imgur.com/Qphac99.jpeg"},
	{ID: 4, Name: "Shoes", Slug: "shoes", Image: "https://i.imgur.com/qNOjJje.jpeg"},
	{ID: 5, Name: "Miscellaneous", Slug: "miscellaneous", Image: "https://i.imgur.com/BG8J0Fj.jpg"},
}

var seedProducts = []struct {
	title      string
	price      string
	categoryID int
	desc       string
}{
	{"Classic Black Hooded Sweatshirt", "79", 1, "Soft cotton blend hoodie with an adjustable drawstring hood."},
	{"Classic Heather Gray Hoodie", "69", 1, "Everyday hoodie in heather gray with a kangaroo pocket."},
	{"Classic Red Baseball Cap", "35", 1, "Six panel cap with an embroidered front."},
	{"Sleek Wireless Headphone", "89.99", 2, "Over-ear wireless headphones with noise isolation."},
	{"Sleek Mirror Finish Phone Case", "27", 2, "Slim protective case with a mirror finish."},
	{"Modern Elegance Teal Armchair", "25", 3, "Upholstered armchair in teal fabric with wooden legs."},
	{"Sleek Modern Leather Sofa", "53", 3, "Three seat sofa in black leather."},
	{"Futuristic Holographic Soccer Cleats", "39", 4, "Lightweight cleats with a holographic upper."},
	{"Rainbow Glitter High Heels", "39", 4, "Glitter heels with a cushioned insole."},
	{"Classic Comfort Fit Joggers", "25", 5, "Relaxed joggers with an elastic waistband."},
}

// Seed loads the demo catalog into repo when it holds no categories yet.
func Seed(repo repositories.ProductRepository) error {
	existing, err := repo.GetCategories()
	if err != nil {
		return fmt.Errorf("failed to read categories: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for i := range seedCategories {
		category := seedCategories[i]
		if err := repo.SaveCategory(&category); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", category.Name, err)
		}
	}
	now := time.Now().UTC()
	for i, p := range seedProducts {
		product := models.Product{
			ID:          i + 1,
			Title:       p.title,
			Slug:        slugify(p.title),
			Price:       decimal.RequireFromString(p.price),
			Description: p.desc,
			Images:      []string{fmt.Sprintf("https://picsum.photos/seed/%d/640/640", i+1)},
			CategoryID:  p.categoryID,
			CreationAt:  now,
			UpdatedAt:   now,
		}
		if err := repo.Create(&product); err != nil {
			return fmt.Errorf("failed to seed product %q: %w", p.title, err)
		}
	}
	log.Printf("Seeded local catalog with %d categories and %d products", len(seedCategories), len(seedProducts))
	return nil
}

func slugify(title string) string {
	out := make([]rune, 0, len(title))
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+'a'-'A')
		case r == ' ' && len(out) > 0 && out[len(out)-1] != '-':
			out = append(out, '-')
		}
	}
	return string(out)
}
