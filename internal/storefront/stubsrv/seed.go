package stubsrv

func seedUsers() []UserSeed {
	return []UserSeed{
		{ID: "u-ana", Name: "Ana Souza", Email: "ana@mercado.dev", Password: "ana123", Role: "customer"},
		{ID: "u-bruno", Name: "Bruno Lima", Email: "bruno@mercado.dev", Password: "bruno123", Role: "customer"},
		{ID: "u-central", Name: "Mercado Central", Email: "central@mercado.dev", Password: "central123", Role: "market"},
		{ID: "u-admin", Name: "Admin", Email: "admin@mercado.dev", Password: "admin123", Role: "admin"},
	}
}

func seedMarkets() []MarketSeed {
	return []MarketSeed{
		{ID: "m-central", Name: "Mercado Central", Address: "Rua das Flores, 100"},
		{ID: "m-bairro", Name: "Mercadinho do Bairro", Address: "Av. Brasil, 2300"},
		{ID: "m-feira", Name: "Feira Livre", Address: "Praça da Matriz, s/n"},
		{ID: "m-atacado", Name: "Atacadão Popular", Address: "Rod. BR-101, km 12"},
	}
}

func seedProducts() []ProductSeed {
	return []ProductSeed{
		{ID: "p-001", Name: "Leite integral", Price: 5.49, Unit: "l", MarketID: "m-central"},
		{ID: "p-002", Name: "Leite desnatado", Price: 5.29, Unit: "l", MarketID: "m-central"},
		{ID: "p-003", Name: "Pão francês", Price: 14.90, Unit: "kg", MarketID: "m-bairro"},
		{ID: "p-004", Name: "Arroz branco", Price: 27.90, Unit: "5kg", MarketID: "m-atacado"},
		{ID: "p-005", Name: "Feijão carioca", Price: 8.99, Unit: "kg", MarketID: "m-atacado"},
		{ID: "p-006", Name: "Ovos brancos", Price: 12.50, Unit: "dz", MarketID: "m-feira"},
		{ID: "p-007", Name: "Tomate", Price: 7.80, Unit: "kg", MarketID: "m-feira"},
		{ID: "p-008", Name: "Cebola", Price: 4.99, Unit: "kg", MarketID: "m-feira"},
		{ID: "p-009", Name: "Alho", Price: 29.90, Unit: "kg", MarketID: "m-feira"},
		{ID: "p-010", Name: "Batata inglesa", Price: 6.49, Unit: "kg", MarketID: "m-feira"},
		{ID: "p-011", Name: "Cenoura", Price: 5.99, Unit: "kg", MarketID: "m-feira"},
		{ID: "p-012", Name: "Banana prata", Price: 6.90, Unit: "kg", MarketID: "m-feira"},
		{ID: "p-013", Name: "Maçã gala", Price: 11.90, Unit: "kg", MarketID: "m-central"},
		{ID: "p-014", Name: "Peito de frango", Price: 19.90, Unit: "kg", MarketID: "m-central"},
		{ID: "p-015", Name: "Carne moída", Price: 34.90, Unit: "kg", MarketID: "m-central"},
		{ID: "p-016", Name: "Queijo muçarela", Price: 44.90, Unit: "kg", MarketID: "m-bairro"},
		{ID: "p-017", Name: "Presunto", Price: 36.90, Unit: "kg", MarketID: "m-bairro"},
		{ID: "p-018", Name: "Manteiga", Price: 12.90, Unit: "200g", MarketID: "m-bairro"},
		{ID: "p-019", Name: "Café torrado", Price: 18.90, Unit: "500g", MarketID: "m-atacado"},
		{ID: "p-020", Name: "Açúcar refinado", Price: 4.79, Unit: "kg", MarketID: "m-atacado"},
		{ID: "p-021", Name: "Farinha de trigo", Price: 5.49, Unit: "kg", MarketID: "m-atacado"},
		{ID: "p-022", Name: "Óleo de soja", Price: 7.99, Unit: "900ml", MarketID: "m-atacado"},
		{ID: "p-023", Name: "Macarrão espaguete", Price: 4.59, Unit: "500g", MarketID: "m-atacado"},
		{ID: "p-024", Name: "Molho de tomate", Price: 3.29, Unit: "340g", MarketID: "m-central"},
		{ID: "p-025", Name: "Chocolate em pó", Price: 9.90, Unit: "200g", MarketID: "m-central"},
	}
}
