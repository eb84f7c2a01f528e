package repositories

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"pedidos-app/models"
)

func novoRepoTeste(t *testing.T) *PedidoRepository {
	t.Helper()
	dir := t.TempDir()
	backup := NewBackupRepository(filepath.Join(dir, "backup"))
	return NewPedidoRepository(filepath.Join(dir, "pedidos.xlsx"), backup)
}

func pedidoTeste(numero, serial string) *models.Pedido {
	return &models.Pedido{
		NumeroPedido:           numero,
		Data:                   time.Date(2026, 3, 10, 8, 30, 0, 0, time.Local),
		Serial:                 serial,
		Maquina:                "M1",
		Posto:                  "P1",
		Coordenada:             "C1",
		Modelo:                 "X",
		Solicitante:            "Carlos",
		Urgente:                "Não",
		Status:                 models.StatusPendente,
		UltimaAtualizacao:      "2026-03-10 08:30:00",
		ResponsavelAtualizacao: "Carlos",
	}
}

func TestProximoNumeroPedidoArquivoInexistente(t *testing.T) {
	repo := novoRepoTeste(t)

	numero, err := repo.ProximoNumeroPedido()
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if numero != "REQ-001" {
		t.Errorf("esperado REQ-001, veio %s", numero)
	}
}

func TestProximoNumeroPedidoSequencia(t *testing.T) {
	repo := novoRepoTeste(t)

	for i, esperado := range []string{"REQ-001", "REQ-002", "REQ-003"} {
		numero, err := repo.ProximoNumeroPedido()
		if err != nil {
			t.Fatalf("pedido %d: %v", i, err)
		}
		if numero != esperado {
			t.Fatalf("pedido %d: esperado %s, veio %s", i, esperado, numero)
		}
		if err := repo.Append(pedidoTeste(numero, "ABC123")); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
}

func TestProximoNumero(t *testing.T) {
	casos := []struct {
		numeros []string
		saida   string
	}{
		{nil, "REQ-001"},
		{[]string{"REQ-001", "REQ-007", "REQ-003"}, "REQ-008"},
		{[]string{"REQ-001", "lixo", "", "REQ-12"}, "REQ-002"},
		{[]string{" REQ-042 "}, "REQ-043"},
		// a sequência continua depois do milésimo pedido
		{[]string{"REQ-998", "REQ-999"}, "REQ-1000"},
		{[]string{"REQ-999", "REQ-1000"}, "REQ-1001"},
		{[]string{"REQ-1000", "REQ-1001"}, "REQ-1002"},
	}
	for _, c := range casos {
		if got := ProximoNumero(c.numeros); got != c.saida {
			t.Errorf("ProximoNumero(%v) = %s, esperado %s", c.numeros, got, c.saida)
		}
	}
}

func TestProximoNumeroPedidoAposMilesimo(t *testing.T) {
	repo := novoRepoTeste(t)
	if err := repo.Append(pedidoTeste("REQ-999", "ABC123")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	for _, esperado := range []string{"REQ-1000", "REQ-1001"} {
		numero, err := repo.ProximoNumeroPedido()
		if err != nil {
			t.Fatalf("ProximoNumeroPedido: %v", err)
		}
		if numero != esperado {
			t.Fatalf("esperado %s, veio %s", esperado, numero)
		}
		if err := repo.Append(pedidoTeste(numero, "ABC123")); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
}

func TestCriarComAlocacaoConcorrente(t *testing.T) {
	repo := novoRepoTeste(t)

	const n = 8
	numeros := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			serial := fmt.Sprintf("SER-%03d", i)
			numero, err := repo.CriarComAlocacao(serial, "M1", fmt.Sprintf("P%d", i), "C1", func(numero string) *models.Pedido {
				return pedidoTeste(numero, serial)
			})
			if err != nil {
				t.Errorf("CriarComAlocacao: %v", err)
				return
			}
			numeros <- numero
		}(i)
	}
	wg.Wait()
	close(numeros)

	vistos := map[string]bool{}
	for numero := range numeros {
		if vistos[numero] {
			t.Fatalf("número de pedido emitido duas vezes: %s", numero)
		}
		vistos[numero] = true
	}
	if len(vistos) != n {
		t.Fatalf("esperados %d números distintos, vieram %d", n, len(vistos))
	}

	pedidos, err := repo.Query("", "")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(pedidos) != n {
		t.Fatalf("esperadas %d linhas gravadas, vieram %d", n, len(pedidos))
	}
}

func TestCriarComAlocacaoDuplicado(t *testing.T) {
	repo := novoRepoTeste(t)

	montar := func(numero string) *models.Pedido {
		return pedidoTeste(numero, "ABC123")
	}
	if _, err := repo.CriarComAlocacao("ABC123", "M1", "P1", "C1", montar); err != nil {
		t.Fatalf("CriarComAlocacao: %v", err)
	}
	if _, err := repo.CriarComAlocacao("ABC123", "M1", "P1", "C1", montar); !errors.Is(err, models.ErrPedidoDuplicado) {
		t.Errorf("esperado ErrPedidoDuplicado, veio %v", err)
	}

	// localização diferente segue a sequência normalmente
	numero, err := repo.CriarComAlocacao("ABC123", "M2", "P1", "C1", montar)
	if err != nil {
		t.Fatalf("CriarComAlocacao: %v", err)
	}
	if numero != "REQ-002" {
		t.Errorf("esperado REQ-002, veio %s", numero)
	}
}

func TestAppendEFind(t *testing.T) {
	repo := novoRepoTeste(t)

	p := pedidoTeste("REQ-001", "ABC123")
	p.Observacoes = "pedido de teste"
	if err := repo.Append(p); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// busca insensível a caixa e espaços
	achado, err := repo.Find("  req-001  ")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if achado.Serial != "ABC123" || achado.Observacoes != "pedido de teste" {
		t.Errorf("pedido recuperado incompleto: %+v", achado)
	}
	if !achado.Data.Equal(p.Data) {
		t.Errorf("data esperada %v, veio %v", p.Data, achado.Data)
	}
}

func TestFindNaoEncontrado(t *testing.T) {
	repo := novoRepoTeste(t)
	if err := repo.Append(pedidoTeste("REQ-001", "ABC123")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if _, err := repo.Find("REQ-999"); !errors.Is(err, models.ErrPedidoNaoEncontrado) {
		t.Errorf("esperado ErrPedidoNaoEncontrado, veio %v", err)
	}
}

func TestHasPendingDuplicate(t *testing.T) {
	repo := novoRepoTeste(t)

	// arquivo ainda não existe
	dup, err := repo.HasPendingDuplicate("ABC123", "M1", "P1", "C1")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if dup {
		t.Fatal("não deveria haver duplicado sem arquivo")
	}

	if err := repo.Append(pedidoTeste("REQ-001", "ABC123")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	dup, err = repo.HasPendingDuplicate("ABC123", "M1", "P1", "C1")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if !dup {
		t.Error("duplicado pendente não detectado")
	}

	// localização diferente não conta como duplicado
	dup, _ = repo.HasPendingDuplicate("ABC123", "M2", "P1", "C1")
	if dup {
		t.Error("localização diferente marcada como duplicado")
	}

	// pedido concluído libera a localização
	if err := repo.UpdateStatus("REQ-001", models.StatusConcluido, "Ana"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	dup, _ = repo.HasPendingDuplicate("ABC123", "M1", "P1", "C1")
	if dup {
		t.Error("pedido concluído ainda bloqueia a localização")
	}
}

func TestUpdateStatusAuditoria(t *testing.T) {
	repo := novoRepoTeste(t)
	if err := repo.Append(pedidoTeste("REQ-001", "ABC123")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := repo.UpdateStatus("REQ-001", "processo", "Ana"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	p, err := repo.Find("REQ-001")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if p.Status != models.StatusProcesso {
		t.Errorf("status esperado %s, veio %s", models.StatusProcesso, p.Status)
	}
	if p.ResponsavelAtualizacao != "Ana" || p.ResponsavelSeparacao != "Ana" {
		t.Errorf("responsáveis não gravados: %+v", p)
	}
	if p.DataSeparacao == "" || p.UltimaAtualizacao == "" {
		t.Error("datas de auditoria vazias")
	}
	if _, err := time.Parse(LayoutAtualizacao, p.DataSeparacao); err != nil {
		t.Errorf("Data_Separacao fora do layout: %q", p.DataSeparacao)
	}

	if err := repo.UpdateStatus("REQ-001", "Concluído", "Beto"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	p, _ = repo.Find("REQ-001")
	if p.Status != models.StatusConcluido {
		t.Errorf("status esperado %s, veio %s", models.StatusConcluido, p.Status)
	}
	if p.ResponsavelColeta != "Beto" || p.DataColeta == "" {
		t.Errorf("dupla de coleta não gravada: %+v", p)
	}
	// separação permanece registrada
	if p.ResponsavelSeparacao != "Ana" {
		t.Errorf("separação sobrescrita: %+v", p)
	}
}

func TestUpdateStatusInvalido(t *testing.T) {
	repo := novoRepoTeste(t)
	if err := repo.Append(pedidoTeste("REQ-001", "ABC123")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := repo.UpdateStatus("REQ-001", "CANCELADO", "Ana"); !errors.Is(err, models.ErrStatusInvalido) {
		t.Errorf("esperado ErrStatusInvalido, veio %v", err)
	}
	if err := repo.UpdateStatus("REQ-999", models.StatusProcesso, "Ana"); !errors.Is(err, models.ErrPedidoNaoEncontrado) {
		t.Errorf("esperado ErrPedidoNaoEncontrado, veio %v", err)
	}
}

func TestQueryFiltros(t *testing.T) {
	repo := novoRepoTeste(t)
	if err := repo.Append(pedidoTeste("REQ-001", "ABC123")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := repo.Append(pedidoTeste("REQ-002", "DEF456")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := repo.UpdateStatus("REQ-002", models.StatusProcesso, "Ana"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	pendentes, err := repo.Query("", models.StatusPendente)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(pendentes) != 1 || pendentes[0].NumeroPedido != "REQ-001" {
		t.Errorf("filtro de status falhou: %+v", pendentes)
	}

	porNumero, err := repo.Query("REQ-002", "")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(porNumero) != 1 || porNumero[0].Status != models.StatusProcesso {
		t.Errorf("filtro por número falhou: %+v", porNumero)
	}
}
