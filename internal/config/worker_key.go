package config

type WorkerKeyStruct struct {
	RenderPDFQueue string
}

var WorkerKey = &WorkerKeyStruct{
	RenderPDFQueue: "render_pdf_queue",
}
