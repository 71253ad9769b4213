package reservation

import "github.com/bocattovalley/bocatto-server/internal/model"

// Catalog is the static list of dining areas.
type Catalog struct {
	envs []model.Environment
	byID map[string]int
}

// NewCatalog indexes envs by id, keeping their order.
func NewCatalog(envs []model.Environment) *Catalog {
	c := &Catalog{envs: envs, byID: make(map[string]int, len(envs))}
	for i, e := range envs {
		c.byID[e.ID] = i
	}
	return c
}

// All returns the dining areas in display order.
func (c *Catalog) All() []model.Environment {
	out := make([]model.Environment, len(c.envs))
	copy(out, c.envs)
	return out
}

// Get looks a dining area up by id.
func (c *Catalog) Get(id string) (model.Environment, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Environment{}, false
	}
	return c.envs[i], true
}

// Reviews returns the guest reviews of a dining area.
func (c *Catalog) Reviews(id string) ([]model.Review, bool) {
	e, ok := c.Get(id)
	if !ok {
		return nil, false
	}
	return e.Reviews, true
}

// DefaultCatalog returns the restaurant's four dining areas.
func DefaultCatalog() *Catalog {
	return NewCatalog([]model.Environment{
		{
			ID: "salon-principal", Name: "Salón Principal", MinPartySize: 2, MaxPartySize: 8,
			Description: "Ambiente acogedor y elegante ideal para cenas románticas o reuniones íntimas",
			Reviews: []model.Review{
				{Author: "María González", Date: "15 Oct 2025", Rating: 5, Text: "Excelente ambiente para una cena romántica. La atención fue impecable y la comida deliciosa. Totalmente recomendado."},
				{Author: "Carlos Mendoza", Date: "10 Oct 2025", Rating: 5, Text: "Perfecto para celebraciones íntimas. El servicio es excepcional y la atmósfera muy acogedora."},
				{Author: "Ana Torres", Date: "05 Oct 2025", Rating: 4, Text: "Muy buena experiencia. La música ambiental y la decoración crean un ambiente muy agradable."},
			},
		},
		{
			ID: "terraza-vip", Name: "Terraza VIP", MinPartySize: 4, MaxPartySize: 12,
			Description: "Espacio premium al aire libre con vista panorámica",
			Reviews: []model.Review{
				{Author: "Roberto Silva", Date: "18 Oct 2025", Rating: 5, Text: "La terraza VIP superó nuestras expectativas. La vista es espectacular y el servicio exclusivo hace que valga totalmente la pena."},
				{Author: "Laura Martínez", Date: "12 Oct 2025", Rating: 5, Text: "Celebramos nuestro aniversario aquí y fue perfecto. La decoración personalizada y la atención al detalle son increíbles."},
				{Author: "Diego Ramírez", Date: "08 Oct 2025", Rating: 5, Text: "Ambiente premium en todo sentido. Ideal para ocasiones especiales. El staff es muy profesional."},
			},
		},
		{
			ID: "salon-familiar", Name: "Salón Familiar", MinPartySize: 6, MaxPartySize: 15,
			Description: "Espacio amplio y confortable diseñado para grupos grandes y familias",
			Reviews: []model.Review{
				{Author: "Patricia Vargas", Date: "16 Oct 2025", Rating: 5, Text: "Perfecto para ir con niños. El área de juegos mantuvo a mis hijos entretenidos mientras disfrutábamos la comida."},
				{Author: "Fernando López", Date: "11 Oct 2025", Rating: 4, Text: "Espacio amplio y cómodo para grupos grandes. El menú infantil es variado y saludable."},
				{Author: "Sofía Herrera", Date: "06 Oct 2025", Rating: 5, Text: "Organizamos la reunión familiar aquí y fue excelente. Todos quedamos muy contentos con la atención y la comida."},
			},
		},
		{
			ID: "bar-lounge", Name: "Bar Lounge", MinPartySize: 2, MaxPartySize: 6,
			Description: "Ambiente relajado con cócteles premium y música en vivo",
			Reviews: []model.Review{
				{Author: "Andrés Morales", Date: "17 Oct 2025", Rating: 5, Text: "El mejor bar lounge de la zona. Los cócteles son espectaculares y la música en vivo es increíble."},
				{Author: "Valentina Cruz", Date: "13 Oct 2025", Rating: 5, Text: "Ambiente nocturno perfecto. El happy hour ofrece excelentes promociones y el bartender es muy creativo."},
				{Author: "Javier Ruiz", Date: "09 Oct 2025", Rating: 4, Text: "Gran lugar para una salida con amigos. La variedad de bebidas es impresionante y el ambiente muy relajado."},
			},
		},
	})
}
