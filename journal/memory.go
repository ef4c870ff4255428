package journal

// Memory keeps records in slices. It is the default journal and the one
// tests inspect.
type Memory struct {
	trades []TradeRecord
	marks  []MarkSnapshot
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) RecordTrade(t TradeRecord) error {
	m.trades = append(m.trades, t)
	return nil
}

func (m *Memory) RecordMark(s MarkSnapshot) error {
	m.marks = append(m.marks, s)
	return nil
}

func (m *Memory) Trades() []TradeRecord { return m.trades }
func (m *Memory) Marks() []MarkSnapshot { return m.marks }

func (m *Memory) Close() error { return nil }
