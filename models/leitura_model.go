package models

import (
	"time"

	"pedidos-app/controllers/idgen"
	"pedidos-app/types"

	"gorm.io/gorm"
)

// LeituraPendente é um código de barras lido no chão de fábrica e ainda não
// convertido em pedido no Google Sheets. Entra na fila no momento da leitura
// e é removida somente após a sincronização ter sucesso.
type LeituraPendente struct {
	ID         types.SnowflakeID `json:"id" gorm:"primaryKey"`
	Codigo     string            `json:"codigo"`
	LidaEm     time.Time         `json:"lida_em"`
	Tentativas int               `json:"tentativas"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (l *LeituraPendente) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == 0 {
		l.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}
