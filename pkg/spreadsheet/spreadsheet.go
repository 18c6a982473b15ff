// Package spreadsheet 读写 Excel 2003 XML（SpreadsheetML，.xls）工作簿。
// 导入导出均为单个工作表、首行表头的表格数据。
package spreadsheet

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var numberPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// Parse 解析工作簿，按行返回单元格文本（已去首尾空白）。
// 只依赖 Row/Cell/Data 的局部元素名，对命名空间前缀不敏感。
func Parse(r io.Reader) ([][]string, error) {
	dec := xml.NewDecoder(r)

	var rows [][]string
	var row []string
	inRow := false
	inData := false
	var data strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("解析 XML 失败: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Row":
				inRow = true
				row = nil
			case "Data":
				if inRow {
					inData = true
					data.Reset()
				}
			}
		case xml.CharData:
			if inData {
				data.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "Data":
				if inData {
					row = append(row, strings.TrimSpace(data.String()))
					inData = false
				}
			case "Row":
				if inRow {
					rows = append(rows, row)
					inRow = false
				}
			}
		}
	}

	return rows, nil
}

// Write 生成工作簿。纯数字单元格写为 Number 类型，其余写为 String。
func Write(w io.Writer, sheetName string, rows [][]string) error {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?>` + "\n")
	b.WriteString(`<?mso-application progid="Excel.Sheet"?>` + "\n")
	b.WriteString(`<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet" ` +
		`xmlns:o="urn:schemas-microsoft-com:office:office" ` +
		`xmlns:x="urn:schemas-microsoft-com:office:excel" ` +
		`xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet" ` +
		`xmlns:html="http://www.w3.org/TR/REC-html40">`)
	b.WriteString(`<Worksheet ss:Name="` + escape(sheetName) + `"><Table>`)

	for _, cols := range rows {
		b.WriteString("<Row>")
		for _, c := range cols {
			if numberPattern.MatchString(c) {
				b.WriteString(`<Cell><Data ss:Type="Number">` + c + `</Data></Cell>`)
			} else {
				b.WriteString(`<Cell><Data ss:Type="String">` + escape(c) + `</Data></Cell>`)
			}
		}
		b.WriteString("</Row>")
	}

	b.WriteString(`</Table></Worksheet></Workbook>`)

	_, err := io.WriteString(w, b.String())
	return err
}

func escape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
