package scenarios

import (
	"fmt"
	"os"
	"path/filepath"
)

// InvoiceFileName is the fixture uploaded by the real-data suite.
const InvoiceFileName = "test_invoice_real.pdf"

// invoicePDF is a minimal one-page invoice the extraction pipeline can read.
const invoicePDF = `%PDF-1.4
1 0 obj
<<
/Type /Catalog
/Pages 2 0 R
>>
endobj

2 0 obj
<<
/Type /Pages
/Kids [3 0 R]
/Count 1
>>
endobj

3 0 obj
<<
/Type /Page
/Parent 2 0 R
/MediaBox [0 0 612 792]
/Contents 4 0 R
/Resources <<
/Font <<
/F1 5 0 R
>>
>>
>>
endobj

4 0 obj
<<
/Length 800
>>
stream
BT
/F1 12 Tf
50 750 Td
(FACTURA / INVOICE) Tj
0 -20 Td
(Fecha: 10/06/2025) Tj
0 -20 Td
(Numero: INV-2025-001) Tj
0 -30 Td
(EMISOR:) Tj
0 -20 Td
(Tecnologia Avanzada S.A.) Tj
0 -20 Td
(NIF: A12345678) Tj
0 -20 Td
(Direccion: Calle Mayor 123, 28001 Madrid) Tj
0 -30 Td
(RECEPTOR:) Tj
0 -20 Td
(Retail Solutions S.L.) Tj
0 -20 Td
(NIF: E55667788) Tj
0 -20 Td
(Direccion: Avenida Constitucion 456, 41001 Sevilla) Tj
0 -30 Td
(CONCEPTOS:) Tj
0 -20 Td
(- Desarrollo de software personalizado    €2,500.00) Tj
0 -20 Td
(- Mantenimiento mensual                   €300.00) Tj
0 -20 Td
(- IVA \(21%\)                              €588.00) Tj
0 -20 Td
(TOTAL:                                   €3,388.00) Tj
0 -30 Td
(Forma de pago: Transferencia bancaria) Tj
0 -20 Td
(Vencimiento: 09/07/2025) Tj
ET
endstream
endobj

5 0 obj
<<
/Type /Font
/Subtype /Type1
/BaseFont /Helvetica
>>
endobj

xref
0 6
0000000000 65535 f
0000000009 00000 n
0000000058 00000 n
0000000115 00000 n
0000000274 00000 n
0000001126 00000 n
trailer
<<
/Size 6
/Root 1 0 R
>>
startxref
1199
%%EOF`

// InvoicePDF returns the fixture bytes.
func InvoicePDF() []byte {
	return []byte(invoicePDF)
}

// WriteInvoice writes the fixture into dir, creating it if needed, and
// returns the file path.
func WriteInvoice(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating work directory: %w", err)
	}

	path := filepath.Join(dir, InvoiceFileName)
	if err := os.WriteFile(path, InvoicePDF(), 0644); err != nil {
		return "", fmt.Errorf("writing test invoice: %w", err)
	}

	return path, nil
}
