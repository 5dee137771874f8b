package holdemtable

import (
	"errors"
	"sync"
)

var (
	ErrManagerTableNotFound = errors.New("manager: table not found")
)

// Manager runs many table engines keyed by table ID.
type Manager interface {
	Reset()

	// TableEngine Actions
	GetTableEngine(tableID string) (TableEngine, error)
	CreateTable(options *TableEngineOptions, callbacks *TableEngineCallbacks, setting TableSetting, opts ...TableEngineOpt) (*Table, error)
	CloseTable(tableID string) error
	StartHand(tableID string) error
	HandleTimeout(tableID string) error
	EmergencyAbort(tableID string) error

	// Player Table Actions
	PlayerJoin(tableID string, joinPlayer JoinPlayer) error
	PlayerTopUp(tableID, playerID string, chips int64) error
	PlayersLeave(tableID string, playerIDs []string) error
	PlayerSitOut(tableID, playerID string) error
	PlayerSitIn(tableID, playerID string) error

	// Shuffle Actions
	SubmitCommit(tableID, playerID string, commitment []byte) error
	RevealSecret(tableID, playerID string, secret []byte) error

	// Player Wager Actions
	PlayerFold(tableID, playerID string) error
	PlayerCheck(tableID, playerID string) error
	PlayerCall(tableID, playerID string) error
	PlayerRaiseTo(tableID, playerID string, betTo int64) error
	PlayerAllIn(tableID, playerID string) error
	PlayerStraddle(tableID, playerID string) error
}

type manager struct {
	tableEngines sync.Map
}

func NewManager() Manager {
	return &manager{
		tableEngines: sync.Map{},
	}
}

func (m *manager) Reset() {
	m.tableEngines = sync.Map{}
}

func (m *manager) GetTableEngine(tableID string) (TableEngine, error) {
	tableEngine, exist := m.tableEngines.Load(tableID)
	if !exist {
		return nil, ErrManagerTableNotFound
	}
	return tableEngine.(TableEngine), nil
}

func (m *manager) CreateTable(options *TableEngineOptions, callbacks *TableEngineCallbacks, setting TableSetting, opts ...TableEngineOpt) (*Table, error) {
	var engineOptions *TableEngineOptions
	if options != nil {
		engineOptions = options
	} else {
		engineOptions = NewTableEngineOptions()
	}

	var engineCallbacks *TableEngineCallbacks
	if callbacks != nil {
		engineCallbacks = callbacks
	} else {
		engineCallbacks = NewTableEngineCallbacks()
	}

	tableEngine := NewTableEngine(engineOptions, opts...)
	tableEngine.OnTableUpdated(engineCallbacks.OnTableUpdated)
	tableEngine.OnTableErrorUpdated(engineCallbacks.OnTableErrorUpdated)
	tableEngine.OnTableEventEmitted(engineCallbacks.OnTableEventEmitted)
	table, err := tableEngine.CreateTable(setting)
	if err != nil {
		return nil, err
	}

	m.tableEngines.Store(table.ID, tableEngine)
	return table, nil
}

func (m *manager) CloseTable(tableID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	if err := tableEngine.CloseTable(); err != nil {
		return err
	}

	m.tableEngines.Delete(tableID)
	return nil
}

func (m *manager) StartHand(tableID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	return tableEngine.StartHand()
}

func (m *manager) HandleTimeout(tableID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	return tableEngine.HandleTimeout()
}

func (m *manager) EmergencyAbort(tableID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	return tableEngine.EmergencyAbort()
}

func (m *manager) PlayerJoin(tableID string, joinPlayer JoinPlayer) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	return tableEngine.PlayerJoin(joinPlayer)
}

func (m *manager) PlayerTopUp(tableID, playerID string, chips int64) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	return tableEngine.PlayerTopUp(playerID, chips)
}

func (m *manager) PlayersLeave(tableID string, playerIDs []string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	return tableEngine.PlayersLeave(playerIDs)
}

func (m *manager) PlayerSitOut(tableID, playerID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	return tableEngine.PlayerSitOut(playerID)
}

func (m *manager) PlayerSitIn(tableID, playerID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	return tableEngine.PlayerSitIn(playerID)
}

func (m *manager) SubmitCommit(tableID, playerID string, commitment []byte) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	return tableEngine.SubmitCommit(playerID, commitment)
}

func (m *manager) RevealSecret(tableID, playerID string, secret []byte) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	return tableEngine.RevealSecret(playerID, secret)
}

func (m *manager) PlayerFold(tableID, playerID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	return tableEngine.PlayerFold(playerID)
}

func (m *manager) PlayerCheck(tableID, playerID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	return tableEngine.PlayerCheck(playerID)
}

func (m *manager) PlayerCall(tableID, playerID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	return tableEngine.PlayerCall(playerID)
}

func (m *manager) PlayerRaiseTo(tableID, playerID string, betTo int64) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	return tableEngine.PlayerRaiseTo(playerID, betTo)
}

func (m *manager) PlayerAllIn(tableID, playerID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	return tableEngine.PlayerAllIn(playerID)
}

func (m *manager) PlayerStraddle(tableID, playerID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return ErrManagerTableNotFound
	}

	return tableEngine.PlayerStraddle(playerID)
}
