package repositories

import (
	"os"
	"path/filepath"
	"time"

	"pedidos-app/models"
	"pedidos-app/types"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LeituraRepository é a fila durável de leituras de código de barras ainda
// não sincronizadas. Entradas são removidas apenas após sucesso; leitura e
// remoção concorrentes (loop de fundo x sincronização manual) são toleradas.
type LeituraRepository struct {
	DB *gorm.DB
}

func NewLeituraRepository(db *gorm.DB) *LeituraRepository {
	return &LeituraRepository{DB: db}
}

// OpenLeiturasDB abre (e migra) o banco sqlite da fila de leituras.
func OpenLeiturasDB(caminho string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(caminho), 0755); err != nil {
		return nil, err
	}
	db, err := gorm.Open(sqlite.Open(caminho), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	// Uma conexão só: o sqlite não aceita escritores simultâneos e a fila
	// recebe escrita do handler e do loop de fundo ao mesmo tempo.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.LeituraPendente{}); err != nil {
		return nil, err
	}
	return db, nil
}

// Enfileirar registra a leitura imediatamente; a tela nunca espera a rede.
func (r *LeituraRepository) Enfileirar(codigo string) (*models.LeituraPendente, error) {
	leitura := &models.LeituraPendente{
		Codigo: codigo,
		LidaEm: time.Now(),
	}
	if err := r.DB.Create(leitura).Error; err != nil {
		return nil, err
	}
	return leitura, nil
}

func (r *LeituraRepository) Pendentes() ([]models.LeituraPendente, error) {
	var leituras []models.LeituraPendente
	if err := r.DB.Order("lida_em asc").Find(&leituras).Error; err != nil {
		return nil, err
	}
	return leituras, nil
}

// Remover tira a leitura da fila após a sincronização. Remover uma entrada
// já removida por outro produtor não é erro.
func (r *LeituraRepository) Remover(id types.SnowflakeID) error {
	return r.DB.Delete(&models.LeituraPendente{}, "id = ?", int64(id)).Error
}

// MarcarTentativa incrementa o contador de tentativas de uma entrada que
// falhou e continua na fila.
func (r *LeituraRepository) MarcarTentativa(id types.SnowflakeID) error {
	return r.DB.Model(&models.LeituraPendente{}).
		Where("id = ?", int64(id)).
		UpdateColumn("tentativas", gorm.Expr("tentativas + 1")).Error
}
