package repositories

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/exp/slices"
)

const maxBackups = 10

// BackupRepository guarda cópias datadas do arquivo de pedidos em uma pasta
// backup/ irmã, mantendo só as 10 mais recentes.
type BackupRepository struct {
	Diretorio string
}

func NewBackupRepository(diretorio string) *BackupRepository {
	return &BackupRepository{Diretorio: diretorio}
}

// BackupBeforeWrite copia o arquivo atual antes de uma mutação. Se o arquivo
// ainda não existe não há o que copiar. O nome carrega um timestamp ordenável,
// então a ordem lexicográfica é a ordem cronológica.
func (b *BackupRepository) BackupBeforeWrite(arquivo string) error {
	if _, err := os.Stat(arquivo); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := os.MkdirAll(b.Diretorio, 0755); err != nil {
		return err
	}

	timestamp := time.Now().Format("20060102_150405")
	destino := filepath.Join(b.Diretorio, fmt.Sprintf("pedidos_backup_%s.xlsx", timestamp))
	if err := copiarArquivo(arquivo, destino); err != nil {
		return err
	}

	return b.prune()
}

// prune remove os backups mais antigos até sobrarem maxBackups.
func (b *BackupRepository) prune() error {
	backups, err := b.Listar()
	if err != nil {
		return err
	}
	for len(backups) > maxBackups {
		if err := os.Remove(filepath.Join(b.Diretorio, backups[0])); err != nil {
			return err
		}
		backups = backups[1:]
	}
	return nil
}

// Listar devolve os nomes dos backups em ordem cronológica.
func (b *BackupRepository) Listar() ([]string, error) {
	entries, err := os.ReadDir(b.Diretorio)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	backups := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".xlsx") {
			backups = append(backups, e.Name())
		}
	}
	slices.Sort(backups)
	return backups, nil
}

// Restaurar sobrescreve o arquivo vivo com o backup escolhido. Operação
// destrutiva, sem merge; o operador confirma antes na interface.
func (b *BackupRepository) Restaurar(nomeBackup, arquivo string) error {
	// nome vem de fora; nunca aceitar caminho com diretório
	if filepath.Base(nomeBackup) != nomeBackup {
		return fmt.Errorf("nome de backup inválido: %s", nomeBackup)
	}
	origem := filepath.Join(b.Diretorio, nomeBackup)
	if _, err := os.Stat(origem); err != nil {
		return fmt.Errorf("backup não encontrado: %s", nomeBackup)
	}
	return copiarArquivo(origem, arquivo)
}

func copiarArquivo(origem, destino string) error {
	in, err := os.Open(origem)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(destino)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
