package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNoEncontrado          = errors.New("recurso no encontrado")
	ErrProductoNoEncontrado  = errors.New("producto no encontrado")
	ErrClienteNoEncontrado   = errors.New("cliente no encontrado")
	ErrProveedorNoEncontrado = errors.New("proveedor no encontrado")
	ErrStockInsuficiente     = errors.New("stock insuficiente")
	ErrEntradaInvalida       = errors.New("entrada inválida")
	ErrDuplicado             = errors.New("recurso duplicado")
	ErrClaveForanea          = errors.New("referencia a un recurso inexistente")
	ErrRestriccion           = errors.New("violación de restricción de datos")
)
