// Package data seeds reference rows the pipeline depends on. Runs on every
// startup and must stay idempotent.
package data

import (
	"github.com/fragrancepalette/backend/internal/db"
	"github.com/fragrancepalette/backend/internal/model"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InitialFamilies returns the seed classification categories. The synthesizer
// resolves classified names against these rows, and the first three
// ingredients of each are the deterministic note fallbacks.
func InitialFamilies() []model.FragranceFamily {
	return []model.FragranceFamily{
		{
			Name:        "Citrus",
			Description: "Fresh, zesty, and energizing scents",
			Ingredients: model.Ingredients{"Lemon", "Orange", "Bergamot", "Grapefruit", "Lime"},
		},
		{
			Name:        "Floral",
			Description: "Elegant and feminine flower-based scents",
			Ingredients: model.Ingredients{"Rose", "Jasmine", "Lavender", "Geranium", "Ylang Ylang"},
		},
		{
			Name:        "Woody",
			Description: "Warm, earthy, and sophisticated scents",
			Ingredients: model.Ingredients{"Cedarwood", "Sandalwood", "Pine", "Vetiver", "Oak"},
		},
		{
			Name:        "Oriental",
			Description: "Rich, warm, and spicy scents",
			Ingredients: model.Ingredients{"Vanilla", "Amber", "Cinnamon", "Clove", "Patchouli"},
		},
		{
			Name:        "Fresh",
			Description: "Clean, aquatic, and cooling scents",
			Ingredients: model.Ingredients{"Marine", "Mint", "Green Leaves", "Cucumber", "Water Lily"},
		},
		{
			Name:        "Gourmand",
			Description: "Sweet, edible, and dessert-like scents",
			Ingredients: model.Ingredients{"Chocolate", "Coffee", "Honey", "Caramel", "Vanilla"},
		},
	}
}

// InitData ensures every seed family and the demo account exist.
func InitData(database *db.DB) error {
	families := InitialFamilies()
	for i := range families {
		created, err := database.EnsureFamily(&families[i])
		if err != nil {
			return err
		}
		if created {
			log.Infof("created fragrance family: %s", families[i].Name)
		}
	}
	return initDemoUser(database)
}

func initDemoUser(database *db.DB) error {
	const demoEmail = "demo@fragrancepalette.com"
	// bcrypt hash of "password123"
	const demoHash = "$2a$12$LQv3c1yqBWVHxkd0LHAkCOYz6TtxMQJqhN8/LewReZSaWaVRfzuQ2"
	if _, err := database.GetUserByEmail(demoEmail); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err := database.CreateUser(&model.User{Email: demoEmail, Password: demoHash}); err != nil {
		return err
	}
	log.Info("created demo user")
	return nil
}
