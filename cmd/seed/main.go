package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrdaebak/api/internal/config"
	"github.com/mrdaebak/api/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

type seedItem struct {
	code      string
	label     string
	unitPrice int64
	stock     int
}

type seedComponent struct {
	code            string
	defaultQuantity int
}

type seedMenu struct {
	menuType   string
	basePrice  int64
	components []seedComponent
}

var items = []seedItem{
	{"STEAK", "Steak", 15000, 100},
	{"WINE_GLASS", "Wine (glass)", 8000, 200},
	{"WINE_BOTTLE", "Wine (bottle)", 35000, 50},
	{"COFFEE", "Coffee", 4000, 200},
	{"COFFEE_POT", "Coffee pot", 12000, 50},
	{"SALAD", "Salad", 7000, 100},
	{"EGG_SCRAMBLE", "Egg scramble", 5000, 100},
	{"BACON", "Bacon", 5000, 100},
	{"BREAD", "Bread", 3000, 200},
	{"BAGUETTE", "Baguette", 3000, 200},
	{"CHAMPAGNE", "Champagne", 30000, 50},
}

var menus = []seedMenu{
	{enum.MenuTypeValentine, 60000, []seedComponent{{"WINE_GLASS", 1}, {"STEAK", 1}}},
	{enum.MenuTypeFrench, 50000, []seedComponent{{"COFFEE", 1}, {"WINE_GLASS", 1}, {"SALAD", 1}, {"STEAK", 1}}},
	{enum.MenuTypeEnglish, 45000, []seedComponent{{"EGG_SCRAMBLE", 1}, {"BACON", 1}, {"BREAD", 1}, {"STEAK", 1}}},
	{enum.MenuTypeChampagneFestival, 90000, []seedComponent{
		{"CHAMPAGNE", 1}, {"BAGUETTE", 4}, {"COFFEE_POT", 1}, {"WINE_BOTTLE", 1}, {"STEAK", 2},
	}},
}

var coupons = []struct {
	code     string
	discount int64
}{
	{"REGULAR", 10000},
	{"WELCOME", 5000},
}

func main() {
	// CLI flags
	password := flag.String("staff-password", "", "Password for the seeded staff accounts")
	flag.Parse()

	// Fall back to environment variables, then the default
	if *password == "" {
		*password = os.Getenv("SEED_STAFF_PASSWORD")
	}
	if *password == "" {
		*password = "password123"
		log.Println("WARNING: Using default staff password 'password123'. Change immediately in production!")
	}

	cfg := config.Load()

	// Connect to database
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	// Seed in a transaction so a partial catalog is never left behind
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := seedCatalog(ctx, tx); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}
	if err := seedCoupons(ctx, tx); err != nil {
		log.Fatalf("Failed to seed coupons: %v", err)
	}
	for _, staff := range []struct{ loginID, name, role string }{
		{"kitchen", "Kitchen Staff", enum.UserRoleKitchenStaff},
		{"delivery", "Delivery Staff", enum.UserRoleDeliveryStaff},
	} {
		if err := seedStaff(ctx, tx, staff.loginID, staff.name, staff.role, *password); err != nil {
			log.Fatalf("Failed to seed %s: %v", staff.loginID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed completed successfully")
}

// seedCatalog creates component items, menus and their compositions. Existing
// rows are left untouched.
func seedCatalog(ctx context.Context, tx pgx.Tx) error {
	for _, it := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO menu_items (code, label, unit_price, stock_quantity, last_restocked)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (code) DO NOTHING
		`, it.code, it.label, it.unitPrice, it.stock)
		if err != nil {
			return fmt.Errorf("insert item %s: %w", it.code, err)
		}
	}

	for _, m := range menus {
		var menuID int32
		err := tx.QueryRow(ctx, `SELECT id FROM menus WHERE type = $1`, m.menuType).Scan(&menuID)
		if err == nil {
			log.Printf("Menu %s already exists (ID: %d), skipping", m.menuType, menuID)
			continue
		}
		if err != pgx.ErrNoRows {
			return fmt.Errorf("check menu %s: %w", m.menuType, err)
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO menus (type, base_price) VALUES ($1, $2) RETURNING id`,
			m.menuType, m.basePrice,
		).Scan(&menuID)
		if err != nil {
			return fmt.Errorf("insert menu %s: %w", m.menuType, err)
		}

		for pos, c := range m.components {
			_, err := tx.Exec(ctx, `
				INSERT INTO menu_components (menu_id, item_code, default_quantity, position)
				VALUES ($1, $2, $3, $4)
			`, menuID, c.code, c.defaultQuantity, pos)
			if err != nil {
				return fmt.Errorf("insert component %s of %s: %w", c.code, m.menuType, err)
			}
		}
		log.Printf("Created menu %s (ID: %d)", m.menuType, menuID)
	}
	return nil
}

func seedCoupons(ctx context.Context, tx pgx.Tx) error {
	for _, c := range coupons {
		_, err := tx.Exec(ctx, `
			INSERT INTO coupons (code, discount_amount) VALUES ($1, $2)
			ON CONFLICT (code) DO NOTHING
		`, c.code, c.discount)
		if err != nil {
			return fmt.Errorf("insert coupon %s: %w", c.code, err)
		}
	}
	return nil
}

// seedStaff creates a staff account if the login id is free.
func seedStaff(ctx context.Context, tx pgx.Tx, loginID, name, role, password string) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE login_id = $1)`, loginID).Scan(&exists); err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if exists {
		log.Printf("User '%s' already exists, skipping", loginID)
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO users (login_id, name, password_hash, role)
		VALUES ($1, $2, $3, $4)
	`, loginID, name, string(hashed), role)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	log.Printf("Created %s user '%s'", role, loginID)
	return nil
}
