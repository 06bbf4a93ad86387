// import_clients da de alta clientes en lote desde una planilla CSV exportada
// de Excel u otro sistema (UTF-8 o Windows-1252, separador , o ;).
//
// Uso: go run ./cmd/import_clients <email-del-usuario> [ruta/clientes.csv]
// Por defecto busca clientes.csv en el directorio actual.
// Los CUIT ya cargados para ese usuario se saltean.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	appclient "github.com/jhoicas/valoracion-api/internal/application/client"
	"github.com/jhoicas/valoracion-api/internal/infrastructure/clientcsv"
	"github.com/jhoicas/valoracion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/valoracion-api/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Uso: import_clients <email-del-usuario> [clientes.csv]")
		os.Exit(2)
	}
	email := os.Args[1]
	csvPath := "clientes.csv"
	if len(os.Args) > 2 {
		csvPath = os.Args[2]
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := clientcsv.Read(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	user, err := postgres.NewUserRepository(pool).GetByEmail(ctx, email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Buscar usuario: %v\n", err)
		os.Exit(1)
	}
	if user == nil {
		fmt.Fprintf(os.Stderr, "No existe el usuario %s\n", email)
		os.Exit(1)
	}

	uc := appclient.NewClientUseCase(postgres.NewClientRepository(pool))
	res, err := uc.Import(ctx, user.ID, rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Importar: %v\n", err)
		os.Exit(1)
	}

	for _, e := range res.Errors {
		fmt.Println("  ", e)
	}
	fmt.Printf("Importado %s para %s: %d creados, %d existentes, %d con errores\n",
		csvPath, email, res.Created, res.Skipped, len(res.Errors))
}
