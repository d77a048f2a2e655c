package ingest

// Field is a logical column of a closing sheet.
type Field string

const (
	FieldPlanta             Field = "planta"
	FieldCodGrupo           Field = "codGrupo"
	FieldNomGrupo           Field = "nomGrupo"
	FieldCodCliente         Field = "codCliente"
	FieldNomCliente         Field = "nomCliente"
	FieldCodCentro          Field = "codCentro"
	FieldNomCentro          Field = "nomCentro"
	FieldLineaNegocio       Field = "lineaNegocio"
	FieldTipo               Field = "tipo"
	FieldNumero             Field = "numero"
	FieldNombre             Field = "nombre"
	FieldEstado             Field = "estado"
	FieldCategoria          Field = "categoria"
	FieldApertura           Field = "apertura"
	FieldCierre             Field = "cierre"
	FieldUltFactura         Field = "ultFactura"
	FieldPresVenta          Field = "presVenta"
	FieldPresCoste          Field = "presCoste"
	FieldIngreso            Field = "ingreso"
	FieldVenta              Field = "venta"
	FieldVentaPendAlb       Field = "ventaPendAlb"
	FieldVentaPendPed       Field = "ventaPendPed"
	FieldVentaPendFac       Field = "ventaPendFac"
	FieldCosteLanzado       Field = "costeLanzado"
	FieldCosteMT            Field = "costeMT"
	FieldCosteSR            Field = "costeSR"
	FieldCosteMN            Field = "costeMN"
	FieldCosteDS            Field = "costeDS"
	FieldCosteOT            Field = "costeOT"
	FieldCoste              Field = "coste"
	FieldMargen             Field = "margen"
	FieldMargenPct          Field = "margenPct"
	FieldMargen2            Field = "margen2"
	FieldMargen2Pct         Field = "margen2Pct"
	FieldHorasPrev          Field = "horasPrev"
	FieldHorasReales        Field = "horasReales"
	FieldGarantiaMT         Field = "garantiaMT"
	FieldGarantiaSR         Field = "garantiaSR"
	FieldGarantiaMN         Field = "garantiaMN"
	FieldGarantiaDS         Field = "garantiaDS"
	FieldGarantiaOT         Field = "garantiaOT"
	FieldGarantia           Field = "garantia"
	FieldIngresoPeriodo     Field = "ingresoPeriodo"
	FieldVentaAcumulado     Field = "ventaAcumulado"
	FieldCosteAcumulado     Field = "costeAcumulado"
	FieldGarantiaAcumulado  Field = "garantiaAcumulado"
	FieldMargenAcumulado    Field = "margenAcumulado"
	FieldMargenAcumuladoPct Field = "margenAcumuladoPct"
)

// Column binds a logical field to the header the closing template uses for it.
type Column struct {
	Field  Field
	Header string
}

// Schema is the closing template layout, in template column order.
var Schema = []Column{
	{FieldPlanta, "Planta"},
	{FieldCodGrupo, "Cod_grupo"},
	{FieldNomGrupo, "Nom_grupo"},
	{FieldCodCliente, "Cod_cliente"},
	{FieldNomCliente, "Nom_cliente"},
	{FieldCodCentro, "Cod_centro"},
	{FieldNomCentro, "Nom_centro"},
	{FieldLineaNegocio, "Lin_negocio"},
	{FieldTipo, "Tipo"},
	{FieldNumero, "Número"},
	{FieldNombre, "Nombre"},
	{FieldEstado, "Estado"},
	{FieldCategoria, "Categoría"},
	{FieldApertura, "Apertura"},
	{FieldCierre, "Cierre"},
	{FieldUltFactura, "Ult_factura"},
	{FieldPresVenta, "Pres_venta"},
	{FieldPresCoste, "Pres_coste"},
	{FieldIngreso, "Ingreso"},
	{FieldVenta, "Venta"},
	{FieldVentaPendAlb, "Venta_pend_alb"},
	{FieldVentaPendPed, "Venta_pend_ped"},
	{FieldVentaPendFac, "Venta_pend_fac"},
	{FieldCosteLanzado, "Coste_lanzado"},
	{FieldCosteMT, "Coste_MT"},
	{FieldCosteSR, "Coste_SR"},
	{FieldCosteMN, "Coste_MN"},
	{FieldCosteDS, "Coste_DS"},
	{FieldCosteOT, "Coste_OT"},
	{FieldCoste, "Coste"},
	{FieldMargen, "Margen"},
	{FieldMargenPct, "Margen_%_vta"},
	{FieldMargen2, "Margen_2"},
	{FieldMargen2Pct, "Margen_2_%_vta"},
	{FieldHorasPrev, "Horas_prev"},
	{FieldHorasReales, "Horas_reales"},
	{FieldGarantiaMT, "Garantia_MT"},
	{FieldGarantiaSR, "Garantia_SR"},
	{FieldGarantiaMN, "Garantia_MN"},
	{FieldGarantiaDS, "Garantia_DS"},
	{FieldGarantiaOT, "Garantia_OT"},
	{FieldGarantia, "Garantia"},
	{FieldIngresoPeriodo, "Ingreso_periodo"},
	{FieldVentaAcumulado, "Venta_acumulado"},
	{FieldCosteAcumulado, "Coste_acumulado"},
	{FieldGarantiaAcumulado, "Garantia_acumulado"},
	{FieldMargenAcumulado, "Margen_acumulado"},
	{FieldMargenAcumuladoPct, "Margen_acumulado_%_vta"},
}

// RequiredFields must resolve for a sheet to be ingested.
var RequiredFields = []Field{FieldVenta, FieldCoste}

// Headers returns the template header row.
func Headers() []string {
	out := make([]string, len(Schema))
	for i, c := range Schema {
		out[i] = c.Header
	}

	return out
}

func headerOf(f Field) string {
	for _, c := range Schema {
		if c.Field == f {
			return c.Header
		}
	}

	return string(f)
}
