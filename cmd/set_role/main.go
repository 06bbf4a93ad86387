// set_role cambia el rol de un usuario ya registrado. Sirve para dar de alta
// el primer admin; después los admins usan PUT /api/users/{id}/role.
//
// Uso: go run ./cmd/set_role <email> <admin|despachante|analista>
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/valoracion-api/internal/application/auth"
	"github.com/jhoicas/valoracion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/valoracion-api/pkg/config"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "Uso: set_role <email> <admin|despachante|analista>")
		os.Exit(2)
	}
	email, role := os.Args[1], os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	users := postgres.NewUserRepository(pool)
	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Buscar usuario: %v\n", err)
		os.Exit(1)
	}
	if user == nil {
		fmt.Fprintf(os.Stderr, "No existe el usuario %s\n", email)
		os.Exit(1)
	}

	uc := auth.NewAuthUseCase(users, auth.JWTConfig{})
	out, err := uc.AssignRole(ctx, user.ID, role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cambiar rol: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s ahora es %s\n", out.Email, out.Role)
}
