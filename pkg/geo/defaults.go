package geo

// DefaultPlaces is the catalog used when no locations file is configured.
// Coordinates are grid units; see KmPerUnit.
var DefaultPlaces = []Place{
	{Name: "Recife - PE", X: 2400, Y: 800},
	{Name: "Olinda - PE", X: 2440, Y: 660},
	{Name: "Jaboatão dos Guararapes - PE", X: 2320, Y: 1020},
	{Name: "Cabo de Santo Agostinho - PE", X: 2200, Y: 1560},
	{Name: "Paulista - PE", X: 2420, Y: 520},
	{Name: "Vitória de Santo Antão - PE", X: 1540, Y: 920},
	{Name: "Gravatá - PE", X: 1100, Y: 1100},
	{Name: "Bezerros - PE", X: 800, Y: 1120},
	{Name: "Caruaru - PE", X: 500, Y: 1160},
	{Name: "Caruaru Norte", X: 500, Y: 1020},
	{Name: "Toritama - PE", X: 520, Y: 700},
	{Name: "Santa Cruz do Capibaribe - PE", X: 300, Y: 560},
	{Name: "Garanhuns - PE", X: 100, Y: 2800},
	{Name: "Campus UFPE Recife", X: 2300, Y: 780},
	{Name: "Campus UFPE Caruaru", X: 460, Y: 1200},
}

// Default returns a catalog built from DefaultPlaces.
func Default() *Catalog {
	return NewCatalog(DefaultPlaces)
}
