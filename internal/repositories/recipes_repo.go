package repositories

import (
	"context"

	"github.com/google/uuid"

	"provender/internal/models"
)

type RecipeRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	// ListIngredients returns the gating subset: mandatory, stock-affecting
	// ingredients of the recipe.
	ListIngredients(ctx context.Context, recipeID uuid.UUID) ([]*models.RecipeIngredient, error)
	// CountActiveUsage maps each material to the number of active recipes
	// using it as a mandatory ingredient. Materials with no usage are present
	// with a zero count.
	CountActiveUsage(ctx context.Context, materialIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type recipeRepo struct {
	db Database
}

func NewRecipeRepo(db Database) RecipeRepository {
	return &recipeRepo{db: db}
}

func (r *recipeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	recipe := &models.Recipe{}
	query := `SELECT id, name, active, created_at FROM recipes WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&recipe.ID, &recipe.Name, &recipe.Active, &recipe.CreatedAt)
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

func (r *recipeRepo) ListIngredients(ctx context.Context, recipeID uuid.UUID) ([]*models.RecipeIngredient, error) {
	query := `
		SELECT id, recipe_id, material_id, per_batch_quantity, mandatory, stock_affecting
		FROM recipe_ingredients
		WHERE recipe_id = $1 AND mandatory AND stock_affecting
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ingredients []*models.RecipeIngredient
	for rows.Next() {
		ingredient := &models.RecipeIngredient{}
		if err := rows.Scan(&ingredient.ID, &ingredient.RecipeID, &ingredient.MaterialID,
			&ingredient.PerBatchQuantity, &ingredient.Mandatory, &ingredient.StockAffecting); err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ingredient)
	}
	return ingredients, rows.Err()
}

func (r *recipeRepo) CountActiveUsage(ctx context.Context, materialIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	query := `
		SELECT i.material_id, COUNT(DISTINCT i.recipe_id)
		FROM recipe_ingredients i
		JOIN recipes rc ON rc.id = i.recipe_id
		WHERE rc.active AND i.mandatory AND i.material_id = ANY($1)
		GROUP BY i.material_id
	`
	rows, err := r.db.Query(ctx, query, materialIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usage := make(map[uuid.UUID]int, len(materialIDs))
	for rows.Next() {
		var id uuid.UUID
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		usage[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range materialIDs {
		if _, ok := usage[id]; !ok {
			usage[id] = 0
		}
	}
	return usage, nil
}
