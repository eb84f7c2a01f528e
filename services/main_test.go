package services

import (
	"os"
	"testing"

	"pedidos-app/controllers/idgen"
)

func TestMain(m *testing.M) {
	idgen.Init()
	os.Exit(m.Run())
}
