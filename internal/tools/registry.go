package tools

// All returns every browser tool in registration order. Capability
// filtering happens at the server layer.
func All() []Tool {
	return []Tool{
		navigateTool(),
		navigateBackTool(),
		navigateForwardTool(),
		snapshotTool(),
		clickTool(),
		typeTool(),
		hoverTool(),
		dragTool(),
		selectOptionTool(),
		pressKeyTool(),
		scrollTool(),
		scrollToTool(),
		waitTool(),
		handleDialogTool(),
		fileUploadTool(),
		tabListTool(),
		tabNewTool(),
		tabSelectTool(),
		tabCloseTool(),
		takeScreenshotTool(),
		traceStartTool(),
		traceStopTool(),
		videoSaveTool(),
		consoleMessagesTool(),
		networkRequestsTool(),
		evaluateTool(),
		resizeTool(),
		closeTool(),
	}
}
