// Package tableformat stores tables of typed, nullable cells in columnar
// files and reads them back row by row.
//
// A table has a Schema of named columns, each of one of four logical
// types: string, double, 32-bit int and 64-bit int. Rows are encoded into
// fixed-capacity column batches, and whole batches move between memory and
// the container file (ORC by default, or Parquet). The schema itself is not
// recovered from the file: it travels in a small Settings tree that the
// caller persists next to the table, usually with Settings.Save at
// SidecarPath.
//
// # Writing
//
//	w, err := tableformat.Create(path, schema, tableformat.DefaultWriterConfig())
//	if err != nil {
//		return err
//	}
//	for _, row := range rows {
//		if err := w.WriteRow(row); err != nil {
//			return err
//		}
//	}
//	if err := w.Close(); err != nil {
//		return err
//	}
//	meta := tableformat.NewSettings()
//	if err := w.WriteMetadata(meta); err != nil {
//		return err
//	}
//	return meta.Save(tableformat.SidecarPath(path))
//
// # Reading
//
//	r, err := tableformat.OpenTable(path)
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//	for row, err := range r.Rows() {
//		if err != nil {
//			return err
//		}
//		fmt.Println(row.Key(), row.Cell(0))
//	}
//
// A RowView returned by the reader points into the reader's current batch
// and is only valid until the next row is requested.
package tableformat
