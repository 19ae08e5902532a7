package engine

// Column a procurement table column with a cleaning rule
type Column string

// IdentifierColumn holds the record id; it is never cleaned
const IdentifierColumn = "id_procedimiento"

// Columns of procedimientos_adj and procedimientos_lic_inv. Contractor
// columns exist under both the _contratista and _adjudicado spellings.
const (
	ColEjercicio           Column = "ejercicio"
	ColFechaInicioPeriodo  Column = "fecha_inicio_periodo"
	ColFechaTerminoPeriodo Column = "fecha_termino_periodo"
	ColTipoProcedimiento   Column = "tipo_procedimiento"
	ColFechaConvocatoria   Column = "fecha_convocatoria_invitacion"
	ColFechaJunta          Column = "fecha_junta_aclaraciones"

	ColNombreContratista          Column = "nombre_contratista_proveedor"
	ColPrimerApellidoContratista  Column = "primer_apellido_contratista"
	ColSegundoApellidoContratista Column = "segundo_apellido_contratista"
	ColRazonSocialContratista     Column = "razon_social_contratista"
	ColRFCContratista             Column = "rfc_contratista"
	ColNombreAdjudicado           Column = "nombre_adjudicado"
	ColPrimerApellidoAdjudicado   Column = "primer_apellido_adjudicado"
	ColSegundoApellidoAdjudicado  Column = "segundo_apellido_adjudicado"
	ColRazonSocialAdjudicado      Column = "razon_social_adjudicado"
	ColRFCAdjudicado              Column = "rfc_adjudicado"

	ColTipoVialidad        Column = "domicilio_fiscal_tipo_vialidad"
	ColNombreVialidad      Column = "domicilio_fiscal_nombre_vialidad"
	ColNumeroExterior      Column = "domicilio_fiscal_numero_exterior"
	ColNumeroInterior      Column = "domicilio_fiscal_numero_interior"
	ColTipoAsentamiento    Column = "domicilio_fiscal_tipo_asentamiento"
	ColNombreAsentamiento  Column = "domicilio_fiscal_nombre_asentamiento"
	ColNombreLocalidad     Column = "domicilio_fiscal_nombre_localidad"
	ColClaveMunicipio      Column = "domicilio_fiscal_clave_municipio"
	ColNombreMunicipio     Column = "domicilio_fiscal_nombre_municipio"
	ColClaveEntidad        Column = "domicilio_fiscal_clave_entidad_federativa"
	ColNombreEntidad       Column = "domicilio_fiscal_nombre_entidad_federativa"
	ColCodigoPostal        Column = "domicilio_fiscal_codigo_postal"
	ColExtranjeroPais      Column = "domicilio_extranjero_pais"
	ColExtranjeroCiudad    Column = "domicilio_extranjero_ciudad"
	ColExtranjeroCalle     Column = "domicilio_extranjero_calle"
	ColExtranjeroNumero    Column = "domicilio_extranjero_numero"
	ColAreaSolicitante     Column = "area_solicitante"
	ColAreaEjecucion       Column = "area_responsable_ejecucion"
	ColAreaContratante     Column = "area_contratante"
	ColAreaInformacion     Column = "area_responsable_informacion"
	ColNumeroContrato      Column = "numero_contrato"
	ColFechaContrato       Column = "fecha_contrato"
	ColFechaInicioVigencia Column = "fecha_inicio_vigencia_contrato"
	ColFechaFinVigencia    Column = "fecha_termino_vigencia_contrato"

	ColMontoSinImpuestos   Column = "monto_contrato_sin_impuestos"
	ColMontoConImpuestos   Column = "monto_total_contrato_con_impuestos"
	ColMontoMinimo         Column = "monto_minimo_con_impuestos"
	ColMontoMaximo         Column = "monto_maximo_con_impuestos"
	ColTipoMoneda          Column = "tipo_moneda"
	ColTipoCambio          Column = "tipo_cambio_referencia"
	ColFormaPago           Column = "forma_pago"
	ColMontoGarantias      Column = "monto_total_garantias"
	ColFechaInicioEntrega  Column = "fecha_inicio_plazo_entrega_ejecucion"
	ColFechaTerminoEntrega Column = "fecha_termino_plazo_entrega_ejecucion"

	ColOrigenRecursos       Column = "origen_recursos_publicos"
	ColFuenteFinanciamiento Column = "fuente_financiamiento"
	ColTipoFondo            Column = "tipo_fondo_participacion_aportacion"
	ColMecanismosVigilancia Column = "mecanismos_vigilincia_supervision"
	ColFechaValidacion      Column = "fecha_validacion"
	ColFechaActualizacion   Column = "fecha_actualizacion"
)

// AllColumns every column with a rule, in table order
var AllColumns = []Column{
	ColEjercicio,
	ColFechaInicioPeriodo,
	ColFechaTerminoPeriodo,
	ColTipoProcedimiento,
	ColFechaConvocatoria,
	ColFechaJunta,
	ColNombreContratista,
	ColPrimerApellidoContratista,
	ColSegundoApellidoContratista,
	ColRazonSocialContratista,
	ColRFCContratista,
	ColNombreAdjudicado,
	ColPrimerApellidoAdjudicado,
	ColSegundoApellidoAdjudicado,
	ColRazonSocialAdjudicado,
	ColRFCAdjudicado,
	ColTipoVialidad,
	ColNombreVialidad,
	ColNumeroExterior,
	ColNumeroInterior,
	ColTipoAsentamiento,
	ColNombreAsentamiento,
	ColNombreLocalidad,
	ColClaveMunicipio,
	ColNombreMunicipio,
	ColClaveEntidad,
	ColNombreEntidad,
	ColCodigoPostal,
	ColExtranjeroPais,
	ColExtranjeroCiudad,
	ColExtranjeroCalle,
	ColExtranjeroNumero,
	ColAreaSolicitante,
	ColAreaEjecucion,
	ColAreaContratante,
	ColAreaInformacion,
	ColNumeroContrato,
	ColFechaContrato,
	ColFechaInicioVigencia,
	ColFechaFinVigencia,
	ColMontoSinImpuestos,
	ColMontoConImpuestos,
	ColMontoMinimo,
	ColMontoMaximo,
	ColTipoMoneda,
	ColTipoCambio,
	ColFormaPago,
	ColMontoGarantias,
	ColFechaInicioEntrega,
	ColFechaTerminoEntrega,
	ColOrigenRecursos,
	ColFuenteFinanciamiento,
	ColTipoFondo,
	ColMecanismosVigilancia,
	ColFechaValidacion,
	ColFechaActualizacion,
}
