package magento

// toModel wraps one raw record in the manager's model type. The record came
// from the API, so the model is marked fetched and keeps a back-reference
// to the owning client for later Save/Refresh calls.
func toModel(raw map[string]any, m *Manager) (*Model, error) {
	return newModel(raw, m.client, m.res, m.spec, true)
}

// toModels maps raw records in order.
func toModels(raw []map[string]any, m *Manager) ([]*Model, error) {
	models := make([]*Model, 0, len(raw))
	for _, record := range raw {
		model, err := toModel(record, m)
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}
	return models, nil
}
