// pkg/ingest/extracts.go
package ingest

import (
	"time"

	"github.com/David-Botos/erp-ingress/pkg/converter"
	"github.com/David-Botos/erp-ingress/pkg/model"
	"github.com/David-Botos/erp-ingress/pkg/rules"
	"github.com/David-Botos/erp-ingress/pkg/schema"
)

// Source tags
const (
	SourceMB52         = "MB52"
	SourceZMMR014      = "ZMMR014"
	SourceZMMR015Power = "ZMMR015_POWER"
	SourceOdooAging    = "ODOO_AGING"
	SourceZSDR030A     = "ZSDR030A"
	SourceZSDR004      = "ZSDR004"
	SourceZMM345E      = "ZMM345E"
)

// Destination tables
const (
	TableInventorySnapshot = "fact_inventory_snapshot"
	TableAging             = "fact_aging"
)

// FOCAbsent lists the FOC cell values that mean "not free of charge"
var FOCAbsent = []string{"N", "NO", "0"}

// DefaultSources returns the extracts known to the reporting backend
func DefaultSources() []*Source {
	return []*Source{
		mb52Source(),
		zmmr014Source(),
		zmmr015PowerSource(),
		odooAgingSource(),
		zsdr030aSource(),
		zsdr004Source(),
		zmm345eSource(),
	}
}

// DefaultCatalog builds a catalog of DefaultSources
func DefaultCatalog() (*Catalog, error) {
	return NewCatalog(DefaultSources()...)
}

// inventoryColumns is the shape of fact_inventory_snapshot shared by MB52 and ZMMR014
func inventoryColumns() []model.Column {
	return []model.Column{
		model.Col("bukrs", model.Text()),
		model.Col("werks", model.Code(4)),
		model.Col("lgort", model.Code(4)),
		model.Col("matnr", model.Text()),
		model.Col("mat_desc", model.Text()),
		model.Col("charg", model.Text()),
		model.Col("qty", model.Decimal()),
		model.Col("value_unrestricted", model.Decimal()),
		model.Col("meins", model.Text()),
		model.Col("total_value", model.Decimal()),
	}
}

func mb52Source() *Source {
	s := schema.New(SourceMB52,
		schema.Field("bukrs", model.Text(), "Company Code"),
		schema.Field("werks", model.Code(4), "Plant"),
		schema.Field("lgort", model.Code(4), "Storage Location"),
		schema.RequiredField("matnr", model.Text(), "Material"),
		schema.Field("mat_desc", model.Text(), "Material Description"),
		schema.Field("charg", model.Text(), "Batch"),
		schema.Field("labst", model.Decimal(), "Unrestricted"),
		schema.Field("value_unrestricted", model.Decimal(), "Value Unrestricted"),
		schema.Field("meins", model.Text(), "Base Unit of Measure"),
	)

	return &Source{
		Tag:    SourceMB52,
		Route:  "MB52",
		Schema: s,
		Projections: []Projection{
			rawProjection("raw_mb52", s),
			{
				Table:   TableInventorySnapshot,
				Columns: inventoryColumns(),
				Build: func(rec model.TypedRecord, _ time.Time) model.Row {
					row := copyFields(model.Row{}, rec, "bukrs", "werks", "lgort", "matnr", "mat_desc", "charg", "meins")
					value := rec.DecimalOrZero("value_unrestricted")
					row["qty"] = rec.DecimalOrZero("labst")
					row["value_unrestricted"] = value
					row["total_value"] = value
					return row
				},
			},
		},
	}
}

func zmmr014Source() *Source {
	s := schema.New(SourceZMMR014,
		schema.RequiredField("plant", model.Code(4), "Plant"),
		schema.RequiredField("material", model.Text(), "Material#", "Material #", "Material"),
		schema.Field("model_no", model.Text(), "Model No."),
		schema.Field("prod_hierarchy", model.Text(), "Prod. Hierachy", "Prod. Hierarchy"),
		schema.Field("material_type", model.Text(), "Material Type"),
		schema.RequiredField("description", model.Text(), "Description"),
		schema.Field("prod_group", model.Text(), "Prod. Group"),
		schema.Field("prod_cat", model.Text(), "Prod. Cat..", "Prod. Cat."),
		schema.Field("prod_line", model.Text(), "Prod. Line"),
		schema.Field("movement_type", model.Text(), "Movement Type"),
		schema.Field("movement_desc", model.Text(), "Movement Desc."),
		schema.Field("date_of_income", model.Date(), "Date of Income"),
		schema.Field("days", model.Integer(), "Days"),
		schema.Field("aging_qty", model.Decimal(), "Aging Qty.", "Aging Qty"),
		schema.Field("std_price", model.Decimal(), "Std. Price", "Std Price"),
		schema.Field("currency", model.Text(), "Currency"),
		schema.Field("aging_val", model.Decimal(), "Aging Val.", "Aging Val"),
		schema.Field("report_date", model.Date(), "Report Date"),
		schema.Field("report_time", model.Text(), "Report Time"),
		schema.Field("zmmr015_power", model.Text(), "ZMMR015 Power"),
		schema.Field("odoo", model.Text(), "Odoo"),
		schema.Field("final_aging", model.Text(), "Final Aging"),
	)

	keys := func(rec model.TypedRecord) model.Row {
		return model.Row{
			"bukrs":    nil,
			"werks":    rec.Value("plant"),
			"lgort":    nil,
			"matnr":    rec.Value("material"),
			"mat_desc": rec.Value("description"),
		}
	}

	return &Source{
		Tag:    SourceZMMR014,
		Route:  "ZMMR014",
		Schema: s,
		Projections: []Projection{
			rawProjection("raw_zmmr014", s),
			{
				Table:   TableInventorySnapshot,
				Columns: inventoryColumns(),
				Build: func(rec model.TypedRecord, _ time.Time) model.Row {
					row := keys(rec)
					value := rec.DecimalOrZero("aging_val")
					row["charg"] = nil
					row["meins"] = nil
					row["qty"] = rec.DecimalOrZero("aging_qty")
					row["value_unrestricted"] = value
					row["total_value"] = value
					return row
				},
			},
			{
				Table: TableAging,
				Columns: []model.Column{
					model.Col("bukrs", model.Text()),
					model.Col("werks", model.Code(4)),
					model.Col("lgort", model.Code(4)),
					model.Col("matnr", model.Text()),
					model.Col("mat_desc", model.Text()),
					model.Col("date_of_income", model.Date()),
					model.Col("days", model.Integer()),
					model.Col("aging_qty", model.Decimal()),
					model.Col("std_price", model.Decimal()),
					model.Col("currency", model.Text()),
					model.Col("aging_val", model.Decimal()),
					model.Col("aging_years", model.Float()),
					model.Col("aging_bucket", model.Text()),
				},
				Build: func(rec model.TypedRecord, _ time.Time) model.Row {
					row := copyFields(keys(rec), rec,
						"date_of_income", "days", "aging_qty", "std_price", "currency", "aging_val")
					row["aging_years"] = nil
					row["aging_bucket"] = nil
					if days, ok := rec.Int("days"); ok {
						row["aging_years"] = rules.AgingYears(days)
						row["aging_bucket"] = rules.AgingBucket(days)
					}
					return row
				},
			},
		},
	}
}

func zmmr015PowerSource() *Source {
	s := schema.New(SourceZMMR015Power,
		schema.RequiredField("werks", model.Code(4), "Plant"),
		schema.RequiredField("matnr", model.Text(), "Material", "Material No."),
		schema.RequiredField("mat_desc", model.Text(), "Description"),
		schema.Field("date_of_income", model.Date(), "Date Of Income"),
		schema.Field("aging_qty", model.Decimal(), "Aging Qty", "Aging Qty.j"),
		schema.Field("aging_val", model.Decimal(), "Aging Val", "Aging Val.j", "Aging Value"),
	)

	return &Source{
		Tag:    SourceZMMR015Power,
		Route:  "ZMMR015_Power",
		Schema: s,
		Projections: []Projection{
			rawProjection("raw_zmmr015_power", s),
			{
				Table: "fact_zmmr015_power",
				Columns: []model.Column{
					model.Col("werks", model.Code(4)),
					model.Col("matnr", model.Text()),
					model.Col("mat_desc", model.Text()),
					model.Col("date_of_income", model.Date()),
					model.Col("aging_qty", model.Decimal()),
					model.Col("aging_val", model.Decimal()),
					model.Col("days_since_income", model.Integer()),
					model.Col("aging_bucket", model.Text()),
				},
				Build: func(rec model.TypedRecord, snapshot time.Time) model.Row {
					row := copyFields(model.Row{}, rec,
						"werks", "matnr", "mat_desc", "date_of_income", "aging_qty", "aging_val")
					row["days_since_income"] = nil
					row["aging_bucket"] = nil
					if income, ok := rec.Date("date_of_income"); ok {
						if days, ok := rules.DaysSince(income, snapshot); ok {
							row["days_since_income"] = days
							row["aging_bucket"] = rules.AgingBucket(days)
						}
					}
					return row
				},
			},
		},
	}
}

func odooAgingSource() *Source {
	s := schema.New(SourceOdooAging,
		schema.RequiredField("product_code", model.Text(), "Product/Internal Reference", "Internal Reference"),
		schema.Field("product_name", model.Text(), "Product"),
		schema.Field("last_incoming", model.Date(), "Last incoming"),
		schema.Field("last_outgoing", model.Date(), "Last outgoing"),
	)

	return &Source{
		Tag:    SourceOdooAging,
		Route:  "Odoo_Aging",
		Schema: s,
		Projections: []Projection{
			rawProjection("raw_odoo_aging", s),
			{
				Table: "fact_odoo_aging",
				Columns: []model.Column{
					model.Col("product_code", model.Text()),
					model.Col("product_name", model.Text()),
					model.Col("last_incoming", model.Date()),
					model.Col("last_outgoing", model.Date()),
					model.Col("days_since_last_incoming", model.Integer()),
					model.Col("days_since_last_outgoing", model.Integer()),
				},
				Build: func(rec model.TypedRecord, snapshot time.Time) model.Row {
					row := copyFields(model.Row{}, rec, "product_code", "product_name", "last_incoming", "last_outgoing")
					row["days_since_last_incoming"] = daysSince(rec, "last_incoming", snapshot)
					row["days_since_last_outgoing"] = daysSince(rec, "last_outgoing", snapshot)
					return row
				},
			},
		},
	}
}

// daysSince returns the days from a date field to the snapshot, or nil
func daysSince(rec model.TypedRecord, field string, snapshot time.Time) any {
	event, ok := rec.Date(field)
	if !ok {
		return nil
	}
	days, ok := rules.DaysSince(event, snapshot)
	if !ok {
		return nil
	}
	return days
}

func zsdr030aSource() *Source {
	s := schema.New(SourceZSDR030A,
		schema.Field("channel", model.Text(), "Channel"),
		schema.Field("sales_office", model.Text(), "Sales Office"),
		schema.Field("sales_doc", model.Text(), "Sales doc."),
		schema.Field("document_date", model.Date(), "Document Date"),
		schema.Field("creation_date", model.Date(), "Creation Date"),
		schema.Field("so_type", model.Text(), "SO Type"),
		schema.Field("sold_to_number", model.Text(), "Sold to Number"),
		schema.Field("sold_to_name", model.Text(), "Sold to Name"),
		schema.Field("sold_to_country", model.Text(), "Sold to Country"),
		schema.Field("ship_to_number", model.Text(), "Ship to Number"),
		schema.Field("ship_to_name", model.Text(), "Ship to Name"),
		schema.Field("ship_to_country", model.Text(), "Ship to Country"),
		schema.Field("bill_to_number", model.Text(), "Bill to Number"),
		schema.Field("bill_to_name", model.Text(), "Bill to Name"),
		schema.Field("bill_to_country", model.Text(), "Bill to Country"),
		schema.Field("item", model.Text(), "Item"),
		schema.Field("item_type", model.Text(), "Item type"),
		schema.Field("po_number", model.Text(), "PO number"),
		schema.Field("po_item_number", model.Text(), "PO Item number"),
		schema.RequiredField("material", model.Text(), "Material"),
		schema.Field("brand", model.Text(), "BRAND"),
		schema.Field("material_desc", model.Text(), "Mat. Desc."),
		schema.Field("storage_location", model.Code(4), "Storage Location"),
		schema.Field("unit_price", model.Decimal(), "Unit Price"),
		schema.Field("so_qty", model.Decimal(), "SO QTY"),
		schema.Field("dn_qty", model.Decimal(), "DN QTY"),
		schema.Field("pgi_qty", model.Decimal(), "PGI QTY"),
		schema.Field("to_pgi_qty", model.Decimal(), "To PGI QTY"),
		schema.Field("invoiced_qty", model.Decimal(), "Invoiced QTY"),
		schema.Field("to_invoice_qty", model.Decimal(), "To invoice QTY"),
		schema.Field("open_so_qty", model.Decimal(), "Open SO QTY"),
		schema.Field("so_amount", model.Decimal(), "SO Amount"),
		schema.Field("delivered_amount", model.Decimal(), "Delivered Amount"),
		schema.Field("inv_amount", model.Decimal(), "Inv. Amount"),
		schema.Field("inv_date", model.Date(), "Inv. Date"),
		schema.Field("so_open_amount", model.Decimal(), "SO Open amount"),
		schema.Field("foc", model.Text(), "FOC"),
		schema.Field("cancel_reason", model.Text(), "Cancel Reason"),
		schema.Field("req_deliv_date", model.Date(), "Req. deliv.date"),
		schema.Field("planned_gi_date", model.Date(), "Planned GI date"),
		schema.Field("actual_gi_date", model.Date(), "Actual GI date"),
		schema.Field("item_deliv_status", model.Text(), "Item Deliv. status"),
		schema.Field("delivery_status", model.Text(), "Delivery status"),
		schema.Field("channel_code", model.Text(), "Channel code"),
		schema.Field("acctassgr", model.Text(), "AcctAssgGr"),
		schema.Field("inside_sales_no", model.Text(), "Inside Sales#"),
		schema.Field("inside_sales", model.Text(), "Inside Sales"),
		schema.Field("sales_employee_no", model.Text(), "Sales employee#"),
		schema.Field("sales_employee", model.Text(), "Sales employee"),
		schema.Field("payment_term", model.Text(), "Payment term"),
		schema.Field("delivery_block", model.Text(), "Delivery Block"),
		schema.Field("debit_down_payment", model.Decimal(), "Debit Down Payment"),
		schema.Field("cleared_down_payment", model.Decimal(), "Cleared Down Payment"),
		schema.Field("open_dp_amount", model.Decimal(), "Open DP Amount"),
		schema.Field("crm_id", model.Text(), "CRM ID"),
		schema.Field("related_order", model.Text(), "Related order"),
		schema.Field("related_order_item", model.Text(), "Related order item"),
		schema.Field("combination_no", model.Text(), "combination#"),
		schema.Field("incompl_due_to", model.Text(), "Incompl.due to"),
		schema.Field("glt_di_fee_item", model.Text(), "GLT D&I Fee Item"),
		schema.Field("glt_di_fee_header", model.Text(), "GLT D&I Fee Header"),
		schema.Field("model_no", model.Text(), "MODEL No."),
		schema.Field("product_series", model.Text(), "Product Series"),
		schema.Field("product_category", model.Text(), "Product Category"),
		schema.Field("fob_stdprice", model.Decimal(), "FOB/Stdprice"),
		schema.Field("moving_price", model.Decimal(), "Moving Price"),
		schema.Field("price_ctl", model.Text(), "Price CTL"),
		schema.Field("contract", model.Text(), "Contract"),
		schema.Field("profit_percent", model.Decimal(), "Profit%"),
		schema.Field("project", model.Text(), "Project"),
		schema.Field("order_comments_header", model.Text(), "Order Comments Header"),
		schema.Field("currency", model.Text(), "Currency"),
	)

	factColumns := append(s.Columns(),
		model.Col("werks", model.Code(4)),
		model.Col("lgort", model.Code(4)),
		model.Col("matnr", model.Text()),
		model.Col("mat_desc", model.Text()),
		model.Col("open_qty", model.Decimal()),
		model.Col("is_foc", model.Presence(FOCAbsent...)),
	)

	return &Source{
		Tag:    SourceZSDR030A,
		Route:  "ZSDR030A",
		Schema: s,
		Projections: []Projection{
			rawProjection("raw_zsdr030a", s),
			{
				Table:   "fact_zsdr030a",
				Columns: factColumns,
				Build: func(rec model.TypedRecord, _ time.Time) model.Row {
					row := make(model.Row, len(rec.Fields)+6)
					for k, v := range rec.Fields {
						row[k] = v
					}
					// the sales order layout carries no plant
					row["werks"] = nil
					row["lgort"] = rec.Value("storage_location")
					row["matnr"] = rec.Value("material")
					row["mat_desc"] = rec.Value("material_desc")
					row["open_qty"] = rec.Value("open_so_qty")
					row["is_foc"] = converter.IsPresent(rec.Value("foc"), FOCAbsent)
					return row
				},
			},
		},
	}
}

func zsdr004Source() *Source {
	s := schema.New(SourceZSDR004,
		schema.Field("sales_org", model.Text(), "Sales Organization"),
		schema.Field("sales_office", model.Text(), "Sales Office"),
		schema.Field("sales_group", model.Text(), "Sales Group"),
		schema.RequiredField("material", model.Text(), "Material"),
		schema.Field("material_desc", model.Text(),
			"Material Description", "Description(EN)", "Description (EN)", "Mat. Description"),
		schema.Field("plant", model.Code(4), "Plant", "Plant."),
		schema.Field("item_net_value_usd", model.Decimal(), "Item net value (USD)", "PO Price", "Unit Price"),
		schema.Field("order_quantity", model.Decimal(), "Order quantity", "Quantity"),
		schema.Field("sales_quantity", model.Decimal(), "SLS qty", "Invoice Qty"),
		schema.Field("billing_date", model.Date(), "Billing date"),
	)

	return &Source{
		Tag:    SourceZSDR004,
		Route:  "ZSDR004",
		Schema: s,
		Projections: []Projection{
			rawProjection("raw_zsdr004", s),
			{
				Table: "fact_zsdr004",
				Columns: []model.Column{
					model.Col("sales_org", model.Text()),
					model.Col("sales_office", model.Text()),
					model.Col("sales_group", model.Text()),
					model.Col("werks", model.Code(4)),
					model.Col("matnr", model.Text()),
					model.Col("mat_desc", model.Text()),
					model.Col("billing_date", model.Date()),
					model.Col("item_net_value_usd", model.Decimal()),
					model.Col("order_quantity", model.Decimal()),
					model.Col("sales_quantity", model.Decimal()),
				},
				Build: func(rec model.TypedRecord, _ time.Time) model.Row {
					row := copyFields(model.Row{}, rec,
						"sales_org", "sales_office", "sales_group", "billing_date",
						"item_net_value_usd", "order_quantity", "sales_quantity")
					row["werks"] = rec.Value("plant")
					row["matnr"] = rec.Value("material")
					row["mat_desc"] = rec.Value("material_desc")
					return row
				},
			},
		},
	}
}

func zmm345eSource() *Source {
	s := schema.New(SourceZMM345E,
		schema.RequiredField("material", model.Text(), "Material"),
		schema.Field("industry_sector", model.Text(), "Indst. Sector"),
		schema.Field("mat_type", model.Text(), "Matr type"),
		schema.RequiredField("plant", model.Code(4), "Plant"),
		schema.RequiredField("sloc", model.Code(4), "SLocation"),
		schema.Field("sales_org", model.Text(), "Sales Org."),
		schema.Field("dist_channel", model.Text(), "Dist. Channel"),
		schema.RequiredField("description", model.Text(), "Description"),
		schema.Field("base_uom", model.Text(), "Base UOM"),
		schema.Field("mat_group", model.Text(), "Matr Group"),
		schema.Field("old_part_no", model.Text(), "Old part No."),
		schema.Field("division", model.Text(), "Division"),
		schema.Field("item_category_basic", model.Text(), "Item cate.(BASIC)"),
	)

	return &Source{
		Tag:    SourceZMM345E,
		Route:  "ZMM345E",
		Schema: s,
		Projections: []Projection{
			rawProjection("raw_zmm345e", s),
			{
				Table: "fact_zmm345e",
				Columns: []model.Column{
					model.Col("werks", model.Code(4)),
					model.Col("lgort", model.Code(4)),
					model.Col("matnr", model.Text()),
					model.Col("mat_desc", model.Text()),
					model.Col("material_type", model.Text()),
					model.Col("material_group", model.Text()),
					model.Col("base_uom", model.Text()),
				},
				Build: func(rec model.TypedRecord, _ time.Time) model.Row {
					return model.Row{
						"werks":          rec.Value("plant"),
						"lgort":          rec.Value("sloc"),
						"matnr":          rec.Value("material"),
						"mat_desc":       rec.Value("description"),
						"material_type":  rec.Value("mat_type"),
						"material_group": rec.Value("mat_group"),
						"base_uom":       rec.Value("base_uom"),
					}
				},
			},
		},
	}
}
