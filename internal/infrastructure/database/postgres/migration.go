// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/domain/cart"
	"github.com/your-org/mall-marketplace/internal/domain/company"
	"github.com/your-org/mall-marketplace/internal/domain/coupon"
	"github.com/your-org/mall-marketplace/internal/domain/favorite"
	"github.com/your-org/mall-marketplace/internal/domain/order"
	"github.com/your-org/mall-marketplace/internal/domain/product"
	"github.com/your-org/mall-marketplace/internal/domain/review"
	"github.com/your-org/mall-marketplace/internal/domain/upload"
	"github.com/your-org/mall-marketplace/internal/domain/user"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		// User domain - Base tables
		&user.User{},
		&user.Card{},
		&user.DeviceToken{},

		// Company domain
		&company.Company{},
		&company.Branch{},

		// Product domain
		&product.Category{},
		&product.Brand{},
		&product.Season{},
		&product.Color{},
		&product.Product{},
		&product.ProductImage{},
		&product.ProductVariant{},

		// Cart domain
		&cart.CartLine{},

		// Coupon domain
		&coupon.Coupon{},
		&coupon.Redemption{},

		// Order domain - Dependent tables
		&order.Order{},
		&order.OrderItem{},

		// Favorites and reviews
		&favorite.FavoriteItem{},
		&review.Review{},

		// Upload domain
		&upload.UploadedFile{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance.
// The unique indexes double as the concurrency backstop for cart lines
// and coupon redemptions.
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Company and branch indexes
		"CREATE INDEX IF NOT EXISTS idx_branches_company_active ON branches(company_id, is_active)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_branch_active ON products(branch_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Product variant indexes
		"CREATE INDEX IF NOT EXISTS idx_product_variants_product_active ON product_variants(product_id, is_active)",

		// Product image indexes
		"CREATE INDEX IF NOT EXISTS idx_product_images_product_primary ON product_images(product_id, is_primary)",

		// Cart indexes. Only one active line per user and variant.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_lines_active_user_variant ON cart_lines(user_id, product_variant_id) WHERE active AND deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_cart_lines_user_active ON cart_lines(user_id, active)",

		// Coupon indexes. One redemption per user per coupon.
		"CREATE INDEX IF NOT EXISTS idx_coupons_branch_active ON coupons(branch_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_coupons_window ON coupons(starts_at, ends_at)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_redemptions_coupon_user ON coupon_redemptions(coupon_id, user_id)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_branch_status ON orders(branch_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_order_number ON orders(order_number)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order items indexes
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_variant ON order_items(product_variant_id)",

		// Review indexes
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_user_product ON reviews(user_id, product_id) WHERE deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_reviews_product_approved ON reviews(product_id, is_approved)",

		// Card indexes
		"CREATE INDEX IF NOT EXISTS idx_cards_user_default ON cards(user_id, is_default)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedCatalogBasics(); err != nil {
		return fmt.Errorf("failed to seed catalog basics: %w", err)
	}

	if err := m.seedMall(); err != nil {
		return fmt.Errorf("failed to seed mall data: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedAdminUser() error {
	var existing user.User
	result := m.db.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Admin123!"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := user.User{
		Email:         "admin@example.com",
		Password:      string(hashedPassword),
		FirstName:     "Admin",
		LastName:      "User",
		IsActive:      true,
		IsAdmin:       true,
		EmailVerified: true,
	}

	if err := m.db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Println("✅ Created admin user: admin@example.com")
	return nil
}

// seedCatalogBasics creates categories, seasons and colors every
// deployment needs
func (m *Migration) seedCatalogBasics() error {
	categories := []product.Category{
		{Name: "Clothing", Slug: "clothing", Description: "Apparel and fashion", SortOrder: 1, IsActive: true},
		{Name: "Shoes", Slug: "shoes", Description: "Footwear for every occasion", SortOrder: 2, IsActive: true},
		{Name: "Accessories", Slug: "accessories", Description: "Bags, belts and jewelry", SortOrder: 3, IsActive: true},
		{Name: "Sportswear", Slug: "sportswear", Description: "Athletic and outdoor wear", SortOrder: 4, IsActive: true},
	}

	for _, category := range categories {
		var existing product.Category
		if m.db.Where("slug = ?", category.Slug).First(&existing).Error != nil {
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
		}
	}

	seasons := []product.Season{
		{Name: "Spring/Summer", Year: time.Now().Year(), IsActive: true},
		{Name: "Fall/Winter", Year: time.Now().Year(), IsActive: true},
	}
	for _, season := range seasons {
		var existing product.Season
		if m.db.Where("name = ? AND year = ?", season.Name, season.Year).First(&existing).Error != nil {
			if err := m.db.Create(&season).Error; err != nil {
				return err
			}
		}
	}

	colors := []product.Color{
		{Name: "Black", HexCode: "#000000"},
		{Name: "White", HexCode: "#FFFFFF"},
		{Name: "Navy", HexCode: "#000080"},
		{Name: "Red", HexCode: "#FF0000"},
		{Name: "Beige", HexCode: "#F5F5DC"},
	}
	for _, color := range colors {
		var existing product.Color
		if m.db.Where("name = ?", color.Name).First(&existing).Error != nil {
			if err := m.db.Create(&color).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// seedMall creates a sample company with two branches for development
func (m *Migration) seedMall() error {
	var existing company.Company
	if m.db.Where("slug = ?", "northside-retail").First(&existing).Error == nil {
		return nil
	}

	co := company.Company{
		Name:        "Northside Retail",
		Slug:        "northside-retail",
		Description: "Multi-brand fashion retailer",
		IsActive:    true,
	}
	if err := m.db.Create(&co).Error; err != nil {
		return err
	}

	branches := []company.Branch{
		{CompanyID: co.ID, Name: "Northside Ground Floor", Floor: "G", UnitCode: "G-12", IsActive: true},
		{CompanyID: co.ID, Name: "Northside Second Floor", Floor: "2", UnitCode: "2-07", IsActive: true},
	}
	for i := range branches {
		if err := m.db.Create(&branches[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Created sample company %q with %d branches", co.Name, len(branches))
	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Reverse dependency order
	tables := []string{
		"coupon_redemptions",
		"order_items",
		"orders",
		"coupons",
		"cart_lines",
		"reviews",
		"favorite_items",
		"product_variants",
		"product_images",
		"products",
		"colors",
		"seasons",
		"brands",
		"categories",
		"branches",
		"companies",
		"uploaded_files",
		"device_tokens",
		"cards",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		}
	}

	return nil
}
