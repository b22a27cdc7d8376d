// pkg/ingest/master.go
package ingest

import (
	"fmt"

	"github.com/David-Botos/erp-ingress/pkg/join"
	"github.com/David-Botos/erp-ingress/pkg/model"
	"github.com/David-Botos/erp-ingress/pkg/reader"
	"github.com/David-Botos/erp-ingress/pkg/rules"
	"github.com/David-Botos/erp-ingress/pkg/schema"
)

// Material master identifiers
const (
	SourceMaterialMaster = "MATERIAL_MASTER"
	TableMaterialMaster  = "dim_material_master"

	MasterKey = "material"
)

// MasterSheets are the five extracts combined into the material master
type MasterSheets struct {
	ZMM345E         *reader.Sheet
	StorageLocation *reader.Sheet
	MaterialGroup   *reader.Sheet
	MaterialType    *reader.Sheet
	MKVZ            *reader.Sheet
}

// MasterPaths locates the five material master extracts on disk
type MasterPaths struct {
	ZMM345E         string
	StorageLocation string
	MaterialGroup   string
	MaterialType    string
	MKVZ            string
}

// masterInput binds one of the five sheets to its schema
type masterInput struct {
	name   string
	schema *schema.SourceSchema
	sheet  func(MasterSheets) *reader.Sheet
	// key and attributes are empty for the primary extract
	key        string
	attributes []string
}

// masterPrimaryFields are the primary columns carried into the master
var masterPrimaryFields = []string{
	"material", "description", "old_part_no", "model_number",
	"brand", "product_line", "product_group", "product_series",
	"serial_number_profile",
	"mat_type", "mat_group", "sloc", "vendor",
	"mrp_group", "price_control", "standard_price",
}

// masterColumnOrder is the payload column order of dim_material_master
var masterColumnOrder = []string{
	"material", "description", "old_part_no", "model_number",
	"brand", "product_line", "product_group", "product_series",
	"serial_number_profile", "is_serialized",
	"mat_type", "mat_type_desc", "mat_type_group",
	"mat_group", "mat_group_desc", "mat_group_desc2", "mat_group_display_desc",
	"sloc", "sloc_description", "storage_group",
	"vendor", "vendor_country", "vendor_postal_code", "vendor_search_term",
	"mrp_group",
	"price_control", "standard_price",
}

func masterPrimarySchema() *schema.SourceSchema {
	return schema.New("ZMM345E_MASTER",
		schema.RequiredField("material", model.Text(), "Material"),
		schema.Field("industry_sector", model.Text(), "Indst. Sector"),
		schema.Field("mat_type", model.Text(), "Matr type"),
		schema.Field("plant", model.Code(4), "Plant"),
		schema.Field("sloc", model.Code(4), "SLocation"),
		schema.Field("sales_org", model.Text(), "Sales Org."),
		schema.Field("dist_channel", model.Text(), "Dist. Channel"),
		schema.Field("description", model.Text(), "Description"),
		schema.Field("base_uom", model.Text(), "Base UOM"),
		schema.Field("mat_group", model.Text(), "Matr Group"),
		schema.Field("old_part_no", model.Text(), "Old part No."),
		schema.Field("division", model.Text(), "Division"),
		schema.Field("item_category_basic", model.Text(), "Item cate.(BASIC)"),
		schema.Field("product_hierarchy", model.Text(), "Product hierarchy"),
		schema.Field("model_number", model.Text(), "Model number"),
		schema.Field("delivery_plant", model.Code(4), "Delivery Plant"),
		schema.Field("tax_data", model.Text(), "Tax data"),
		schema.Field("material_status_group", model.Text(), "Matr Stat Group"),
		schema.Field("material_pricing_group", model.Text(), "Material Pricing Group"),
		schema.Field("account_assignment_group", model.Text(), "Account Assignment Group"),
		schema.Field("item_category_sales", model.Text(), "Item cate.(SALES)"),
		schema.Field("availability_check", model.Text(), "Availability check"),
		schema.Field("profit_center", model.Text(), "Profit Center"),
		schema.Field("serial_number_profile", model.Text(), "Serial Number Profile"),
		schema.Field("purch_group", model.Text(), "Purch. group"),
		schema.Field("plant_status", model.Text(), "Plant Status"),
		schema.Field("auto_po", model.Text(), "Auto PO"),
		schema.Field("mrp_group", model.Text(), "MRP Group"),
		schema.Field("mrp_type", model.Text(), "MRP Type"),
		schema.Field("mrp_controller", model.Text(), "MRP Controller"),
		schema.Field("lot_size", model.Text(), "Lot Size"),
		schema.Field("procurement_type", model.Text(), "Procu. Type"),
		schema.Field("issue_sloc", model.Code(4), "Issue SLoc."),
		schema.Field("sloc_for_ep", model.Code(4), "SLocation for EP"),
		schema.Field("inhouse_production_time", model.Integer(), "InhseProd Time"),
		schema.Field("planned_delivery_time", model.Integer(), "Planned del.time"),
		schema.Field("gr_processing_time", model.Integer(), "GR proc time"),
		schema.Field("schedule_margin_key", model.Text(), "Schdl. Margin key"),
		schema.Field("safety_stock", model.Decimal(), "Safety Stock"),
		schema.Field("strategy_group", model.Text(), "Strategy Group"),
		schema.Field("consumption_mode", model.Text(), "Consumption Mode"),
		schema.Field("consumption_period_back", model.Integer(), "Consumption period: back."),
		schema.Field("consumption_period_forward", model.Integer(), "Consumption period: for."),
		schema.Field("individual_coll", model.Text(), "Individual/Coll"),
		schema.Field("valuation_class", model.Text(), "Valua. class"),
		schema.Field("price_control", model.Text(), "Price contl"),
		schema.Field("price_unit", model.Decimal(), "Price unit"),
		schema.Field("standard_price", model.Decimal(), "Stand. Price"),
		schema.Field("material_origin", model.Text(), "Material Origin"),
		schema.Field("overhead_group", model.Text(), "Overhead Group"),
		schema.Field("storage_bin", model.Text(), "Storage Bin"),
		schema.Field("cross_plant_status", model.Text(), "Cross-Plant Material Status"),
		schema.Field("basic_view_df", model.Text(), "Basic view DF"),
		schema.Field("plant_view_df", model.Text(), "Plant view DF"),
		schema.Field("brand", model.Text(), "Brand"),
		schema.Field("product_line", model.Text(), "ProductLine"),
		schema.Field("product_group", model.Text(), "ProductGroup"),
		schema.Field("product_series", model.Text(), "ProductSeries"),
		schema.Field("vendor", model.Code(10), "Vendor"),
	)
}

// masterInputs returns the primary extract followed by the references in join order
func masterInputs() []masterInput {
	return []masterInput{
		{
			name:   SourceZMM345E,
			schema: masterPrimarySchema(),
			sheet:  func(s MasterSheets) *reader.Sheet { return s.ZMM345E },
		},
		{
			name: "MATERIAL_TYPE",
			schema: schema.New("MATERIAL_TYPE",
				schema.RequiredField("mat_type", model.Text(), "MTyp"),
				schema.Field("mat_type_desc", model.Text(), "Material type description"),
				schema.Field("mat_type_group", model.Text(), "Material type Group"),
			),
			sheet:      func(s MasterSheets) *reader.Sheet { return s.MaterialType },
			key:        "mat_type",
			attributes: []string{"mat_type_desc", "mat_type_group"},
		},
		{
			name: "MATERIAL_GROUP",
			schema: schema.New("MATERIAL_GROUP",
				schema.RequiredField("mat_group", model.Text(), "Matl Group"),
				schema.Field("mat_group_desc", model.Text(), "Material Group Desc."),
				schema.Field("mat_group_desc2", model.Text(), "Description 2 for the material group"),
				schema.Field("mat_group_display_desc", model.Text(), "Display Description"),
			),
			sheet:      func(s MasterSheets) *reader.Sheet { return s.MaterialGroup },
			key:        "mat_group",
			attributes: []string{"mat_group_desc", "mat_group_desc2", "mat_group_display_desc"},
		},
		{
			name: "STORAGE_LOCATION",
			schema: schema.New("STORAGE_LOCATION",
				schema.RequiredField("sloc", model.Code(4), "SLoc"),
				schema.Field("sloc_description", model.Text(), "Description"),
				schema.Field("storage_group", model.Text(), "Storage Group"),
			),
			sheet:      func(s MasterSheets) *reader.Sheet { return s.StorageLocation },
			key:        "sloc",
			attributes: []string{"sloc_description", "storage_group"},
		},
		{
			name: "MKVZ",
			schema: schema.New("MKVZ",
				schema.RequiredField("vendor", model.Code(10), "Vendor"),
				schema.Field("vendor_country", model.Text(), "Country"),
				schema.Field("vendor_postal_code", model.Text(), "Postal Code"),
				schema.Field("vendor_search_term", model.Text(), "Search term"),
			),
			sheet:      func(s MasterSheets) *reader.Sheet { return s.MKVZ },
			key:        "vendor",
			attributes: []string{"vendor_country", "vendor_postal_code", "vendor_search_term"},
		},
	}
}

// validateMasterInputs checks the master schemas and that every join key and
// attribute the output needs is declared with one type on both sides
func validateMasterInputs(inputs []masterInput) error {
	types := make(map[string]model.FieldType)
	for _, in := range inputs {
		if err := in.schema.Validate(); err != nil {
			return fmt.Errorf("invalid master schema %s: %w", in.name, err)
		}
		for _, f := range in.schema.Fields {
			if existing, ok := types[f.Name]; ok && existing.String() != f.Type.String() {
				return fmt.Errorf("master field %s is declared as %s and %s", f.Name, existing, f.Type)
			}
			types[f.Name] = f.Type
		}
	}
	for _, col := range masterColumnOrder {
		if col == "is_serialized" {
			continue
		}
		if _, ok := types[col]; !ok {
			return fmt.Errorf("master column %s is not produced by any input", col)
		}
	}
	return nil
}

// MasterTableMetadata describes dim_material_master
func MasterTableMetadata() *model.TableMetadata {
	types := make(map[string]model.FieldType)
	for _, in := range masterInputs() {
		for _, f := range in.schema.Fields {
			types[f.Name] = f.Type
		}
	}
	types["is_serialized"] = model.Text()

	cols := MetaColumns()
	for _, name := range masterColumnOrder {
		cols = append(cols, model.Col(name, types[name]))
	}
	return &model.TableMetadata{Table: TableMaterialMaster, Columns: cols}
}

// joinMaster left-joins the primary rows onto the reference tables in order,
// derives the serialization label and keeps one row per material
func joinMaster(
	primary []model.TypedRecord,
	refs []*join.ReferenceTable,
	lookups []masterInput,
	policy rules.SerializationPolicy,
	dedup join.DedupPolicy,
) (model.RowSet, int, error) {
	base := model.RowSet{
		Table:   TableMaterialMaster,
		Columns: append([]string(nil), masterPrimaryFields...),
		Rows:    make([]model.Row, 0, len(primary)),
	}
	for _, rec := range primary {
		base.Rows = append(base.Rows, copyFields(model.Row{}, rec, masterPrimaryFields...))
	}

	joins := make([]join.Lookup, len(refs))
	for i, ref := range refs {
		joins[i] = join.Lookup{ForeignKey: lookups[i].key, Table: ref}
	}

	joined, err := join.LeftJoin(base, joins...)
	if err != nil {
		return model.RowSet{}, 0, err
	}

	for _, row := range joined.Rows {
		row["is_serialized"] = policy.Label(row["serial_number_profile"])
	}
	joined.Columns = append(joined.Columns, "is_serialized")

	deduped, dropped := join.DedupByKey(joined, MasterKey, dedup)
	return deduped, dropped, nil
}
