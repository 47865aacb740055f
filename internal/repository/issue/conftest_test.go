package issue

import "context"

// mockStore implements the consumer interface for tests.
type mockStore struct {
	data map[string][]byte

	scanErr    error
	mgetErr    error
	replaceErr error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Scan(_ context.Context, _ string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *mockStore) MGet(_ context.Context, keys []string) ([][]byte, error) {
	if m.mgetErr != nil {
		return nil, m.mgetErr
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = m.data[k]
	}
	return out, nil
}

func (m *mockStore) Replace(_ context.Context, key string, value []byte) (bool, error) {
	if m.replaceErr != nil {
		return false, m.replaceErr
	}
	if _, ok := m.data[key]; !ok {
		return false, nil
	}
	m.data[key] = value
	return true, nil
}
