package document_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/jhoicas/portal-unamad/internal/application/ports"
	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
)

// memStates implementa DocumentStateRepository sobre un mapa de estados.
type memStates struct {
	mu     sync.Mutex
	states map[string]*entity.DocumentState
	// raced simula que otra petición procesó el documento antes del UPDATE.
	raced bool
}

func (m *memStates) GetState(_ context.Context, id string) (*entity.DocumentState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[id]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (m *memStates) ApplyTransition(_ context.Context, t repository.Transition) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[t.ID]
	if !ok || m.raced {
		return false, nil
	}
	allowed := false
	for _, f := range t.From {
		if st.Status == f {
			allowed = true
		}
	}
	if !allowed {
		return false, nil
	}
	st.Status = t.To
	if t.ApprovedByID != nil {
		st.ApprovedByID = t.ApprovedByID
		st.ApprovedAt = t.ApprovedAt
	}
	if t.ClearApproval {
		st.ApprovedByID = nil
		st.ApprovedAt = nil
	}
	return true, nil
}

type memConstancias struct {
	*memStates
	docs map[string]*entity.Constancia
	seq  int
}

func (m *memConstancias) Create(_ context.Context, c *entity.Constancia) error {
	m.seq++
	c.Code = fmt.Sprintf("CONST-2025-%06d", m.seq)
	cp := *c
	m.docs[c.ID] = &cp
	m.states[c.ID] = &entity.DocumentState{ID: c.ID, Kind: entity.KindConstancia, Status: c.Status, CreatedByID: c.CreatedByID}
	return nil
}

func (m *memConstancias) GetByID(_ context.Context, id string) (*entity.Constancia, error) {
	c, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	if st, ok := m.states[id]; ok {
		cp.Status, cp.ApprovedByID, cp.ApprovedAt = st.Status, st.ApprovedByID, st.ApprovedAt
	}
	return &cp, nil
}

func (m *memConstancias) List(_ context.Context, f repository.DocumentFilter) ([]*entity.Constancia, int, error) {
	var out []*entity.Constancia
	for id := range m.docs {
		c, _ := m.GetByID(context.Background(), id)
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, len(out), nil
}

func (m *memConstancias) Delete(_ context.Context, id string) error {
	delete(m.docs, id)
	delete(m.states, id)
	return nil
}

type memResoluciones struct {
	*memStates
	docs map[string]*entity.Resolucion
}

func (m *memResoluciones) Create(_ context.Context, r *entity.Resolucion) error {
	for _, o := range m.docs {
		if o.Number == r.Number {
			return domain.ErrDuplicate
		}
	}
	cp := *r
	m.docs[r.ID] = &cp
	m.states[r.ID] = &entity.DocumentState{ID: r.ID, Kind: entity.KindResolucion, Status: r.Status, CreatedByID: r.CreatedByID}
	return nil
}

func (m *memResoluciones) GetByID(_ context.Context, id string) (*entity.Resolucion, error) {
	r, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	if st, ok := m.states[id]; ok {
		cp.Status, cp.ApprovedByID, cp.ApprovedAt = st.Status, st.ApprovedByID, st.ApprovedAt
	}
	return &cp, nil
}

func (m *memResoluciones) List(context.Context, repository.DocumentFilter) ([]*entity.Resolucion, int, error) {
	out := make([]*entity.Resolucion, 0, len(m.docs))
	for id := range m.docs {
		r, _ := m.GetByID(context.Background(), id)
		out = append(out, r)
	}
	return out, len(out), nil
}

func (m *memResoluciones) Delete(_ context.Context, id string) error {
	delete(m.docs, id)
	delete(m.states, id)
	return nil
}

type memAudit struct {
	logs []*entity.AuditLog
	fail bool
}

func (m *memAudit) Create(_ context.Context, l *entity.AuditLog) error {
	if m.fail {
		return errors.New("audit caído")
	}
	m.logs = append(m.logs, l)
	return nil
}

func (m *memAudit) ListByEntity(_ context.Context, entityType, entityID string) ([]*entity.AuditLog, error) {
	var out []*entity.AuditLog
	for _, l := range m.logs {
		if l.EntityType == entityType && l.EntityID == entityID {
			out = append(out, l)
		}
	}
	return out, nil
}

// rollbackTx descarta los cambios de fn si devuelve error. Constancias y resoluciones
// comparten el mismo memStates.
type rollbackTx struct {
	states       *memStates
	constancias  *memConstancias
	resoluciones *memResoluciones
	audit        *memAudit
}

type snapshot struct {
	states       map[string]entity.DocumentState
	constancias  map[string]*entity.Constancia
	resoluciones map[string]*entity.Resolucion
	logs         []*entity.AuditLog
}

func (tx *rollbackTx) RunConstancias(ctx context.Context, fn func(repository.ConstanciaRepository, repository.AuditLogRepository) error) error {
	snap := tx.snapshot()
	if err := fn(tx.constancias, tx.audit); err != nil {
		tx.restore(snap)
		return err
	}
	return nil
}

func (tx *rollbackTx) RunResoluciones(ctx context.Context, fn func(repository.ResolucionRepository, repository.AuditLogRepository) error) error {
	snap := tx.snapshot()
	if err := fn(tx.resoluciones, tx.audit); err != nil {
		tx.restore(snap)
		return err
	}
	return nil
}

func (tx *rollbackTx) snapshot() snapshot {
	states := make(map[string]entity.DocumentState, len(tx.states.states))
	for id, st := range tx.states.states {
		states[id] = *st
	}
	return snapshot{
		states:       states,
		constancias:  cloneMap(tx.constancias.docs),
		resoluciones: cloneMap(tx.resoluciones.docs),
		logs:         append([]*entity.AuditLog(nil), tx.audit.logs...),
	}
}

func (tx *rollbackTx) restore(s snapshot) {
	restored := make(map[string]*entity.DocumentState, len(s.states))
	for id, st := range s.states {
		cp := st
		restored[id] = &cp
	}
	tx.states.states = restored
	tx.constancias.docs = s.constancias
	tx.resoluciones.docs = s.resoluciones
	tx.audit.logs = s.logs
}

func cloneMap[T any](m map[string]*T) map[string]*T {
	out := make(map[string]*T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// fakeAuthz concede según un conjunto de (código, acción); SUPER_ADMIN pasa siempre.
type fakeAuthz struct {
	allowed map[string]bool
	err     error
}

func (f *fakeAuthz) Can(_ context.Context, sess entity.Session, code string, action entity.Action) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if sess.IsSuperuser() {
		return true, nil
	}
	return f.allowed[code+"|"+string(action)], nil
}

type memStore struct {
	files map[string][]byte
	fail  bool
}

func (m *memStore) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if m.fail {
		return errors.New("disco lleno")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.files[key] = b
	return nil
}

func (m *memStore) Open(_ context.Context, key string) (*ports.StoredFile, error) {
	b, ok := m.files[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ports.StoredFile{Content: io.NopCloser(bytes.NewReader(b)), Size: int64(len(b))}, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.files, key)
	return nil
}

type fakePDF struct {
	gotApprover string
}

func (f *fakePDF) RenderConstancia(c *entity.Constancia, approver string) ([]byte, error) {
	f.gotApprover = approver
	return []byte("%PDF-1.7 " + c.Code), nil
}

type memUsers struct {
	repository.UserRepository
	byID map[string]*entity.User
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return m.byID[id], nil
}
