package holdemtable

type TableSetting struct {
	TableID     string       `json:"table_id"`
	Meta        TableMeta    `json:"meta"`
	JoinPlayers []JoinPlayer `json:"join_players"`
}

type JoinPlayer struct {
	PlayerID   string `json:"player_id"`
	Seat       int    `json:"seat"` // UnsetValue picks a random open seat
	BuyInChips int64  `json:"buy_in_chips"`
}
