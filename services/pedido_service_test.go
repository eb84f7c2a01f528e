package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"pedidos-app/models"
	"pedidos-app/repositories"
)

type fakeCatalogo struct {
	registros []models.Paco
}

func (f *fakeCatalogo) BuscarPorSerial(serial string) (*models.Paco, error) {
	return repositories.BuscarSerial(f.registros, serial)
}

// fakeRemote registra as chamadas feitas ao espelho remoto.
type fakeRemote struct {
	conectado    bool
	salvos       []*models.Pedido
	atualizados  []string
	proximo      int
	erroSalvar   error
	paco         []models.Paco
	statusRemoto map[string]bool // pedidos que existem só no remoto
}

func (f *fakeRemote) Conectado() bool { return f.conectado }

func (f *fakeRemote) SalvarPedidoCompleto(p *models.Pedido, itens []models.PedidoItem) error {
	if f.erroSalvar != nil {
		return f.erroSalvar
	}
	f.salvos = append(f.salvos, p)
	return nil
}

func (f *fakeRemote) AtualizarStatusPedido(numeroPedido, novoStatus, ultimaAtualizacao, responsavel string) error {
	if f.statusRemoto != nil && !f.statusRemoto[numeroPedido] {
		return models.ErrPedidoNaoEncontrado
	}
	f.atualizados = append(f.atualizados, numeroPedido+"="+novoStatus)
	return nil
}

func (f *fakeRemote) GetPedidoDetalhes(numeroPedido string) (*models.PedidoDetalhes, error) {
	return nil, models.ErrPedidoNaoEncontrado
}

func (f *fakeRemote) GetPacoRecords() ([]models.Paco, error) { return f.paco, nil }

func (f *fakeRemote) ProximoNumeroPedido() int {
	if f.proximo == 0 {
		return 1
	}
	return f.proximo
}

func novoServicoTeste(t *testing.T, remote RemoteSync) *PedidoService {
	t.Helper()
	dir := t.TempDir()
	backup := repositories.NewBackupRepository(filepath.Join(dir, "backup"))
	pedidos := repositories.NewPedidoRepository(filepath.Join(dir, "pedidos.xlsx"), backup)
	catalogo := &fakeCatalogo{registros: []models.Paco{
		{Serial: "ABC123", Maquina: "M1", Posto: "P1", Coordenada: "C1", Modelo: "X"},
	}}
	return NewPedidoService(pedidos, catalogo, remote, nil)
}

func TestCriarPedido(t *testing.T) {
	remote := &fakeRemote{conectado: true, statusRemoto: map[string]bool{}}
	svc := novoServicoTeste(t, remote)

	numero, err := svc.CriarPedido(NovoPedidoInput{Serial: "abc123", Solicitante: "Carlos"})
	if err != nil {
		t.Fatalf("CriarPedido: %v", err)
	}
	if numero != "REQ-001" {
		t.Errorf("esperado REQ-001, veio %s", numero)
	}

	p, err := svc.Pedidos.Find(numero)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if p.Status != models.StatusPendente {
		t.Errorf("novo pedido deve nascer PENDENTE, veio %s", p.Status)
	}
	if p.Serial != "ABC123" || p.Maquina != "M1" || p.Modelo != "X" {
		t.Errorf("dados do catálogo não propagados: %+v", p)
	}
	if p.ResponsavelAtualizacao != "Carlos" {
		t.Errorf("auditoria de criação incorreta: %+v", p)
	}
	if p.Urgente != "Não" {
		t.Errorf("urgência default esperada Não, veio %q", p.Urgente)
	}

	if len(remote.salvos) != 1 || remote.salvos[0].NumeroPedido != "REQ-001" {
		t.Errorf("pedido não espelhado no remoto: %+v", remote.salvos)
	}
}

func TestCriarPedidoConcorrente(t *testing.T) {
	svc := novoServicoTeste(t, &fakeRemote{})

	const n = 6
	registros := make([]models.Paco, 0, n)
	for i := 0; i < n; i++ {
		registros = append(registros, models.Paco{
			Serial:     fmt.Sprintf("SER%03d", i),
			Maquina:    "M1",
			Posto:      fmt.Sprintf("P%d", i),
			Coordenada: "C1",
		})
	}
	svc.Catalogo = &fakeCatalogo{registros: registros}

	numeros := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			numero, err := svc.CriarPedido(NovoPedidoInput{
				Serial:      fmt.Sprintf("SER%03d", i),
				Solicitante: "Carlos",
			})
			if err != nil {
				t.Errorf("CriarPedido: %v", err)
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
}

func TestCriarPedidoSerialDesconhecido(t *testing.T) {
	svc := novoServicoTeste(t, &fakeRemote{})

	if _, err := svc.CriarPedido(NovoPedidoInput{Serial: "ZZZ", Solicitante: "Carlos"}); !errors.Is(err, models.ErrSerialNaoEncontrado) {
		t.Errorf("esperado ErrSerialNaoEncontrado, veio %v", err)
	}
}

func TestCriarPedidoDuplicado(t *testing.T) {
	svc := novoServicoTeste(t, &fakeRemote{})

	if _, err := svc.CriarPedido(NovoPedidoInput{Serial: "ABC123", Solicitante: "Carlos"}); err != nil {
		t.Fatalf("primeiro pedido: %v", err)
	}
	if _, err := svc.CriarPedido(NovoPedidoInput{Serial: "ABC123", Solicitante: "Ana"}); !errors.Is(err, models.ErrPedidoDuplicado) {
		t.Errorf("esperado ErrPedidoDuplicado, veio %v", err)
	}

	// concluir o pedido libera a localização
	if err := svc.AtualizarStatus("REQ-001", models.StatusConcluido, "Ana"); err != nil {
		t.Fatalf("AtualizarStatus: %v", err)
	}
	numero, err := svc.CriarPedido(NovoPedidoInput{Serial: "ABC123", Solicitante: "Ana"})
	if err != nil {
		t.Fatalf("pedido após conclusão: %v", err)
	}
	if numero != "REQ-002" {
		t.Errorf("esperado REQ-002, veio %s", numero)
	}
}

func TestCriarPedidoRemotoIndisponivel(t *testing.T) {
	remote := &fakeRemote{conectado: true, erroSalvar: errors.New("quota")}
	svc := novoServicoTeste(t, remote)

	// falha remota não derruba a criação local
	numero, err := svc.CriarPedido(NovoPedidoInput{Serial: "ABC123", Solicitante: "Carlos"})
	if err != nil {
		t.Fatalf("CriarPedido: %v", err)
	}
	if _, err := svc.Pedidos.Find(numero); err != nil {
		t.Errorf("pedido não persistido localmente: %v", err)
	}
}

func TestAtualizarStatusEspelhado(t *testing.T) {
	remote := &fakeRemote{conectado: true, statusRemoto: map[string]bool{"REQ-001": true}}
	svc := novoServicoTeste(t, remote)

	if _, err := svc.CriarPedido(NovoPedidoInput{Serial: "ABC123", Solicitante: "Carlos"}); err != nil {
		t.Fatalf("CriarPedido: %v", err)
	}
	if err := svc.AtualizarStatus("REQ-001", "processo", "Ana"); err != nil {
		t.Fatalf("AtualizarStatus: %v", err)
	}

	p, _ := svc.Pedidos.Find("REQ-001")
	if p.Status != models.StatusProcesso {
		t.Errorf("status local esperado PROCESSO, veio %s", p.Status)
	}
	if len(remote.atualizados) != 1 || remote.atualizados[0] != "REQ-001="+models.StatusProcesso {
		t.Errorf("espelho remoto não atualizado: %v", remote.atualizados)
	}
}

func TestAtualizarStatusSoNoRemoto(t *testing.T) {
	remote := &fakeRemote{conectado: true, statusRemoto: map[string]bool{"REQ-005": true}}
	svc := novoServicoTeste(t, remote)

	// pedido não existe localmente, só no espelho
	if err := svc.AtualizarStatus("REQ-005", models.StatusProcesso, "Ana"); err != nil {
		t.Fatalf("AtualizarStatus: %v", err)
	}
	if len(remote.atualizados) != 1 {
		t.Errorf("atualização remota direta não executada: %v", remote.atualizados)
	}
}

func TestAtualizarStatusNaoEncontrado(t *testing.T) {
	svc := novoServicoTeste(t, &fakeRemote{conectado: false})

	if err := svc.AtualizarStatus("REQ-999", models.StatusProcesso, "Ana"); !errors.Is(err, models.ErrPedidoNaoEncontrado) {
		t.Errorf("esperado ErrPedidoNaoEncontrado, veio %v", err)
	}

	// remoto conectado mas sem o pedido
	svc = novoServicoTeste(t, &fakeRemote{conectado: true, statusRemoto: map[string]bool{}})
	if err := svc.AtualizarStatus("REQ-999", models.StatusProcesso, "Ana"); !errors.Is(err, models.ErrPedidoNaoEncontrado) {
		t.Errorf("esperado ErrPedidoNaoEncontrado, veio %v", err)
	}
}

func TestAtualizarStatusInvalido(t *testing.T) {
	svc := novoServicoTeste(t, &fakeRemote{})

	if err := svc.AtualizarStatus("REQ-001", "EM ANDAMENTO", "Ana"); !errors.Is(err, models.ErrStatusInvalido) {
		t.Errorf("esperado ErrStatusInvalido, veio %v", err)
	}
}

func TestComprovante(t *testing.T) {
	svc := novoServicoTeste(t, &fakeRemote{})

	numero, err := svc.CriarPedido(NovoPedidoInput{Serial: "ABC123", Solicitante: "Carlos"})
	if err != nil {
		t.Fatalf("CriarPedido: %v", err)
	}

	pdf, err := svc.Comprovante(numero)
	if err != nil {
		t.Fatalf("Comprovante: %v", err)
	}
	if len(pdf) < 4 || string(pdf[:4]) != "%PDF" {
		t.Error("saída não parece um PDF")
	}
}
