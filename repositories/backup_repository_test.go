package repositories

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestBackupRotacao(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backup")
	b := NewBackupRepository(backupDir)

	arquivo := filepath.Join(dir, "pedidos.xlsx")
	if err := os.WriteFile(arquivo, []byte("conteudo"), 0644); err != nil {
		t.Fatal(err)
	}

	// backups antigos pré-existentes, com timestamps ordenáveis
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 14; i++ {
		nome := fmt.Sprintf("pedidos_backup_20260101_%02d0000.xlsx", i)
		if err := os.WriteFile(filepath.Join(backupDir, nome), []byte("velho"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if err := b.BackupBeforeWrite(arquivo); err != nil {
		t.Fatalf("BackupBeforeWrite: %v", err)
	}

	backups, err := b.Listar()
	if err != nil {
		t.Fatalf("Listar: %v", err)
	}
	if len(backups) != 10 {
		t.Fatalf("esperados 10 backups após a rotação, vieram %d", len(backups))
	}
	// os mais antigos saem primeiro
	if backups[0] <= "pedidos_backup_20260101_040000.xlsx" {
		t.Errorf("backup antigo não removido: %s", backups[0])
	}
}

func TestBackupArquivoInexistente(t *testing.T) {
	dir := t.TempDir()
	b := NewBackupRepository(filepath.Join(dir, "backup"))

	// nada para copiar: não é erro
	if err := b.BackupBeforeWrite(filepath.Join(dir, "pedidos.xlsx")); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	backups, err := b.Listar()
	if err != nil {
		t.Fatalf("Listar: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("nenhum backup deveria existir, vieram %v", backups)
	}
}

func TestRestaurar(t *testing.T) {
	dir := t.TempDir()
	b := NewBackupRepository(filepath.Join(dir, "backup"))

	arquivo := filepath.Join(dir, "pedidos.xlsx")
	if err := os.WriteFile(arquivo, []byte("versão A"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := b.BackupBeforeWrite(arquivo); err != nil {
		t.Fatalf("BackupBeforeWrite: %v", err)
	}
	if err := os.WriteFile(arquivo, []byte("versão B"), 0644); err != nil {
		t.Fatal(err)
	}

	backups, err := b.Listar()
	if err != nil || len(backups) != 1 {
		t.Fatalf("esperado 1 backup, vieram %v (%v)", backups, err)
	}

	if err := b.Restaurar(backups[0], arquivo); err != nil {
		t.Fatalf("Restaurar: %v", err)
	}
	conteudo, err := os.ReadFile(arquivo)
	if err != nil {
		t.Fatal(err)
	}
	if string(conteudo) != "versão A" {
		t.Errorf("conteúdo restaurado incorreto: %q", conteudo)
	}
}

func TestRestaurarNomeInvalido(t *testing.T) {
	dir := t.TempDir()
	b := NewBackupRepository(filepath.Join(dir, "backup"))

	if err := b.Restaurar("../pedidos.xlsx", filepath.Join(dir, "pedidos.xlsx")); err == nil {
		t.Error("nome com diretório deveria ser rejeitado")
	}
	if err := b.Restaurar("inexistente.xlsx", filepath.Join(dir, "pedidos.xlsx")); err == nil {
		t.Error("backup inexistente deveria ser rejeitado")
	}
}
