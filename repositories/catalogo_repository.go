package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"pedidos-app/models"

	"github.com/xuri/excelize/v2"
)

const SheetPaco = "Paco"

// CatalogoRepository lê a tabela de localizações (aba Paco) da planilha
// local. Dados são somente leitura e recarregados sob demanda.
type CatalogoRepository struct {
	Arquivo string

	mu    sync.Mutex
	cache []models.Paco
}

func NewCatalogoRepository(arquivo string) *CatalogoRepository {
	return &CatalogoRepository{Arquivo: arquivo}
}

// Carregar lê a aba Paco inteira. O resultado fica em cache até Recarregar.
func (c *CatalogoRepository) Carregar() ([]models.Paco, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache != nil {
		return c.cache, nil
	}
	registros, err := lerPaco(c.Arquivo)
	if err != nil {
		return nil, err
	}
	c.cache = registros
	return registros, nil
}

// Recarregar descarta o cache (a planilha de localizações muda raramente,
// mas muda entre turnos).
func (c *CatalogoRepository) Recarregar() {
	c.mu.Lock()
	c.cache = nil
	c.mu.Unlock()
}

// BuscarPorSerial resolve um código lido contra o catálogo. Comparação após
// trim + maiúsculas; a primeira ocorrência vence.
func (c *CatalogoRepository) BuscarPorSerial(serial string) (*models.Paco, error) {
	registros, err := c.Carregar()
	if err != nil {
		return nil, err
	}
	return BuscarSerial(registros, serial)
}

// BuscarSerial aplica a regra de resolução sobre qualquer origem de catálogo
// (arquivo local ou espelho remoto).
func BuscarSerial(registros []models.Paco, serial string) (*models.Paco, error) {
	alvo := strings.ToUpper(strings.TrimSpace(serial))
	if alvo == "" {
		return nil, models.ErrSerialNaoEncontrado
	}
	for i := range registros {
		if strings.ToUpper(strings.TrimSpace(registros[i].Serial)) == alvo {
			return &registros[i], nil
		}
	}
	return nil, models.ErrSerialNaoEncontrado
}

func (c *CatalogoRepository) ListarMaquinas() ([]string, error) {
	registros, err := c.Carregar()
	if err != nil {
		return nil, err
	}
	set := map[string]bool{}
	for _, r := range registros {
		if r.Maquina != "" {
			set[r.Maquina] = true
		}
	}
	return sortedKeys(set), nil
}

func (c *CatalogoRepository) ListarPostos(maquina string) ([]string, error) {
	registros, err := c.Carregar()
	if err != nil {
		return nil, err
	}
	set := map[string]bool{}
	for _, r := range registros {
		if r.Maquina == maquina && r.Posto != "" {
			set[r.Posto] = true
		}
	}
	return sortedKeys(set), nil
}

func (c *CatalogoRepository) ListarCoordenadas(maquina, posto string) ([]string, error) {
	registros, err := c.Carregar()
	if err != nil {
		return nil, err
	}
	set := map[string]bool{}
	for _, r := range registros {
		if r.Maquina == maquina && r.Posto == posto && r.Coordenada != "" {
			set[r.Coordenada] = true
		}
	}
	return sortedKeys(set), nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func lerPaco(arquivo string) ([]models.Paco, error) {
	f, err := excelize.OpenFile(arquivo)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir planilha de localizações: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetPaco)
	if err != nil {
		return nil, fmt.Errorf("aba %q não encontrada: %w", SheetPaco, err)
	}
	if len(rows) == 0 {
		return []models.Paco{}, nil
	}

	// Índice das colunas por nome normalizado (trim + Title), tolerante a
	// cabeçalhos digitados com caixa diferente
	idx := map[string]int{}
	for i, h := range rows[0] {
		idx[TituloColuna(h)] = i
	}
	col := func(row []string, nome string) string {
		i, ok := idx[nome]
		if !ok {
			return ""
		}
		return strings.TrimSpace(cellAt(row, i))
	}

	registros := make([]models.Paco, 0, len(rows)-1)
	for _, row := range rows[1:] {
		r := models.Paco{
			Serial:      col(row, "Serial"),
			Maquina:     col(row, "Maquina"),
			Posto:       col(row, "Posto"),
			Coordenada:  col(row, "Coordenada"),
			Modelo:      col(row, "Modelo"),
			OT:          col(row, "Ot"),
			Semiacabado: col(row, "Semiacabado"),
			Pagoda:      col(row, "Pagoda"),
		}
		if r.Serial == "" && r.Maquina == "" {
			continue
		}
		registros = append(registros, r)
	}
	return registros, nil
}

// LerLinhasPaco devolve a aba Paco crua (cabeçalho incluído) com as células
// aparadas, no formato aceito pela escrita do espelho remoto.
func LerLinhasPaco(arquivo string) ([][]interface{}, error) {
	f, err := excelize.OpenFile(arquivo)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir planilha de localizações: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetPaco)
	if err != nil {
		return nil, fmt.Errorf("aba %q não encontrada: %w", SheetPaco, err)
	}

	valores := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		linha := make([]interface{}, len(row))
		for i, cell := range row {
			linha[i] = strings.TrimSpace(cell)
		}
		valores = append(valores, linha)
	}
	return valores, nil
}

// TituloColuna normaliza um nome de coluna: trim + primeira letra maiúscula
// de cada palavra (mesma regra aplicada ao espelho remoto).
func TituloColuna(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
