// Package catalog compiles schema declarations written in CUE into
// schema.Database values.
//
// A file declares one or more schemas under the top-level "schema" field:
//
//	schema: hr: {
//		table: Department: {
//			column: {id: int, name: string}
//			primaryKey: ["id"]
//		}
//		table: Employee: {
//			column: {id: int, departmentId: int}
//			primaryKey: ["id"]
//			foreignKey: fk_department: {
//				column:     "departmentId"
//				references: "Department.id"
//			}
//		}
//	}
//
// Load also accepts a directory holding one CUE package, whose files may
// split the declarations and import other packages.
//
// Tables and columns keep their declaration order. Float columns are
// rejected; use int.
package catalog
