// Package exporter writes CSV files for the eTender export tool.
//
// Files are written to a temporary name in the target folder and renamed
// into place when complete, so a failed combine never leaves a half-written
// dated CSV behind. An optional UTF-8 BOM helps Excel detect the encoding.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths, logger)
//	stream, err := writer.CreateStreamWriter("20210315.csv", header, false)
//	for _, row := range rows {
//	    if err := stream.WriteRecord(row); err != nil {
//	        stream.Abort()
//	        return err
//	    }
//	}
//	err = stream.Close()
package exporter
